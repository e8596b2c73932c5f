package api

// catalogCreated is the fixed creation timestamp reported for every
// catalog entry. The catalog is static; nothing here talks to the
// backend.
const catalogCreated int64 = 1686935002

// modelCatalog lists the model identifiers the backend is known to
// accept. Requests are not restricted to this list.
var modelCatalog = []Model{
	{ID: "gpt-4o-mini", Object: ObjectModel, Created: catalogCreated, OwnedBy: "openai"},
	{ID: "claude-3-haiku-20240307", Object: ObjectModel, Created: catalogCreated, OwnedBy: "anthropic"},
	{ID: "meta-llama/Llama-3.3-70B-Instruct-Turbo", Object: ObjectModel, Created: catalogCreated, OwnedBy: "meta"},
	{ID: "mistralai/Mixtral-8x7B-Instruct-v0.1", Object: ObjectModel, Created: catalogCreated, OwnedBy: "mistralai"},
	{ID: "o3-mini", Object: ObjectModel, Created: catalogCreated, OwnedBy: "openai"},
}

// ListModels returns the static model catalog.
func ListModels() ModelList {
	data := make([]Model, len(modelCatalog))
	copy(data, modelCatalog)
	return ModelList{Object: ObjectList, Data: data}
}
