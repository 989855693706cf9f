package migrations

import (
	"evnt/internal/store"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection(store.CollectionTags)

		collection.ListRule = types.Pointer("")
		collection.ViewRule = types.Pointer("")
		collection.CreateRule = types.Pointer("@request.auth.id != ''")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 100, Presentable: true},
			&core.TextField{Name: "slug", Required: true, Max: 100},
			&core.AutodateField{Name: "created", OnCreate: true},
		)
		collection.AddIndex("idx_tags_slug", true, "slug", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(store.CollectionTags)
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
