package dtos

type ColumnInfo struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

type DatasetResponse struct {
	Name     string       `json:"name"`
	Columns  []ColumnInfo `json:"columns"`
	RowCount int          `json:"row_count"`
	Archived bool         `json:"archived"`
}

type DatasetListResponse struct {
	Datasets []DatasetResponse `json:"datasets"`
	Total    int               `json:"total"`
}
