package migrations

import (
	"evnt/internal/store"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		events, err := app.FindCollectionByNameOrId(store.CollectionEvents)
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection(store.CollectionComments)

		// nil update and delete rules leave moderation to superusers
		collection.ListRule = types.Pointer("event.private = false")
		collection.ViewRule = types.Pointer("event.private = false")
		collection.CreateRule = types.Pointer("@request.auth.id != '' && event.private = false")

		collection.Fields.Add(
			&core.RelationField{Name: "event", CollectionId: events.Id, MaxSelect: 1, Required: true, CascadeDelete: true},
			&core.TextField{Name: "username", Required: true, Max: 80},
			&core.TextField{Name: "comment", Required: true, Max: 2000},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		collection.AddIndex("idx_comments_event", false, "event, created", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(store.CollectionComments)
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
