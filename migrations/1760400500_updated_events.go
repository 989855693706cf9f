package migrations

import (
	"evnt/internal/store"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(store.CollectionEvents)
		if err != nil {
			return err
		}

		// add
		if err := collection.Fields.AddMarshaledJSONAt(8, []byte(`{
			"hidden": false,
			"id": "file_event_image",
			"maxSelect": 1,
			"maxSize": 5242880,
			"mimeTypes": [
				"image/jpeg",
				"image/png",
				"image/gif",
				"image/webp"
			],
			"name": "image",
			"presentable": false,
			"protected": false,
			"required": false,
			"system": false,
			"thumbs": [
				"480x0"
			],
			"type": "file"
		}`)); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId(store.CollectionEvents)
		if err != nil {
			return err
		}

		// remove
		collection.Fields.RemoveById("file_event_image")

		return app.Save(collection)
	})
}
