package schema

// CoreBinderTable represents the 'core.binder' table
type CoreBinderTable struct {
	Table        string
	ID           string
	Name         string
	GridRows     string
	GridColumns  string
	Ordering     string
	OwnerID      string
	IsShared     string
	CollectedIDs string
	SlotCards    string
	CreatedAt    string
	UpdatedAt    string
}

// CoreBinder is the schema definition for core.binder
var CoreBinder = CoreBinderTable{
	Table:        "core.binder",
	ID:           "id",
	Name:         "name",
	GridRows:     "gridrows",
	GridColumns:  "gridcolumns",
	Ordering:     "ordering",
	OwnerID:      "ownerid",
	IsShared:     "isshared",
	CollectedIDs: "collectedids",
	SlotCards:    "slotcards",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t CoreBinderTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.GridRows, t.GridColumns, t.Ordering, t.OwnerID, t.IsShared,
		t.CollectedIDs, t.SlotCards, t.CreatedAt, t.UpdatedAt,
	}
}
