package schema

type builtinSource struct {
	name   string
	schema *Schema
}

// builtinCatalog lists the sources every registry starts with.
func builtinCatalog() []builtinSource {
	return []builtinSource{
		{"mnist_images", &Schema{
			Title:   "MNIST handwritten digit images",
			Columns: []Column{{Type: U8, Count: 1, Label: "pixel"}},
			Dimens:  []int64{70000, 28, 28},
			Data:    "builtin:mnist_images",
		}},
		{"mnist_labels", &Schema{
			Title:   "MNIST digit labels",
			Columns: []Column{{Type: U8, Count: 1, Label: "label"}},
			Dimens:  []int64{70000},
			Data:    "builtin:mnist_labels",
		}},
		{"iris_data", &Schema{
			Title: "Iris flower measurements",
			Columns: []Column{
				{Type: Str, Count: 4, Label: "Id"},
				{Type: F32, Count: 1, Label: "Sepal.Length"},
				{Type: F32, Count: 1, Label: "Sepal.Width"},
				{Type: F32, Count: 1, Label: "Petal.Length"},
				{Type: F32, Count: 1, Label: "Petal.Width"},
				{Type: Str, Count: 12, Label: "Species"},
			},
			Dimens: []int64{150},
			Data:   "builtin:iris_data",
		}},
	}
}
