package migrations

import (
	"evnt/internal/store"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		categories, err := app.FindCollectionByNameOrId(store.CollectionCategories)
		if err != nil {
			return err
		}
		tags, err := app.FindCollectionByNameOrId(store.CollectionTags)
		if err != nil {
			return err
		}
		users, err := app.FindCollectionByNameOrId(store.CollectionUsers)
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection(store.CollectionEvents)

		visible := "private = false || owner = @request.auth.id"
		collection.ListRule = types.Pointer(visible)
		collection.ViewRule = types.Pointer(visible)
		collection.CreateRule = types.Pointer("@request.auth.id != '' && owner = @request.auth.id")
		collection.UpdateRule = types.Pointer("owner = @request.auth.id && @request.body.owner:isset = false")
		collection.DeleteRule = types.Pointer("owner = @request.auth.id")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 200, Presentable: true},
			&core.TextField{Name: "slug", Required: true, Max: 200},
			&core.RelationField{Name: "category", CollectionId: categories.Id, MaxSelect: 1},
			&core.TextField{Name: "host", Required: true, Max: 200},
			&core.TextField{Name: "venue", Required: true, Max: 200},
			&core.DateField{Name: "date", Required: true},
			&core.TextField{Name: "ticket_price", Max: 32, Pattern: `^\d+(\.\d+)?$`},
			&core.TextField{Name: "description", Max: 5000},
			&core.RelationField{Name: "owner", CollectionId: users.Id, MaxSelect: 1, Required: true, CascadeDelete: true},
			&core.BoolField{Name: "private"},
			&core.RelationField{Name: "tags", CollectionId: tags.Id, MaxSelect: 99},
			&core.RelationField{Name: "attendees", CollectionId: users.Id, MaxSelect: 9999},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		collection.AddIndex("idx_events_slug", true, "slug", "")
		collection.AddIndex("idx_events_owner_private", false, "owner, private", "")
		collection.AddIndex("idx_events_date", false, "date", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(store.CollectionEvents)
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
