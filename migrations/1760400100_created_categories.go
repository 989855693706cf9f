package migrations

import (
	"evnt/internal/store"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection(store.CollectionCategories)

		// reference data, managed by superusers only
		collection.ListRule = types.Pointer("")
		collection.ViewRule = types.Pointer("")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true, Max: 100, Presentable: true},
			&core.TextField{Name: "slug", Required: true, Max: 100, Pattern: `^[a-z0-9_-]+$`},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)
		collection.AddIndex("idx_categories_slug", true, "slug", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(store.CollectionCategories)
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
