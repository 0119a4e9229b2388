package models

// Session is one chat session bound to a loaded dataset. The conversation
// history accumulates across questions; only a trailing window of it is
// ever supplied to the planner.
type Session struct {
	DatasetName string `bson:"dataset_name" json:"dataset_name"`
	Mode        string `bson:"mode" json:"mode"` // structured or retrieval
	Base        `bson:",inline"`
}

func NewSession(datasetName, mode string) *Session {
	return &Session{
		DatasetName: datasetName,
		Mode:        mode,
		Base:        NewBase(),
	}
}
