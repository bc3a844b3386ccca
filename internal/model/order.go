package model

type Order struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Summary      string `json:"summary"`
	Status       string `json:"status"`
	Priority     string `json:"priority"`
	CustomerName string `json:"customer_name"`
	CustomerRef  string `json:"customer_ref"`
	Location     string `json:"location"`
	DueDate      string `json:"due_date"`
	CreatedBy    string `json:"created_by"`
	DeletedAt    *int64 `json:"deleted_at,omitempty"`
	DeletedBy    string `json:"deleted_by,omitempty"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}

type JournalEntry struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Ctime   int64  `json:"ctime"`
}

type SummaryEntry struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	Ctime   int64  `json:"ctime"`
}

type Photo struct {
	ID             string `json:"id"`
	OrderID        string `json:"order_id"`
	JournalEntryID string `json:"journal_entry_id,omitempty"`
	FileKey        string `json:"file_key"`
	Caption        string `json:"caption"`
	ContentType    string `json:"content_type"`
	Size           int64  `json:"size"`
	UploadedBy     string `json:"uploaded_by"`
	Ctime          int64  `json:"ctime"`
}

type OrderStage struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Name    string `json:"name"`
	Sort    int    `json:"sort"`
}

type TimeEntry struct {
	ID       string  `json:"id"`
	OrderID  string  `json:"order_id"`
	StageID  string  `json:"stage_id,omitempty"`
	UserID   string  `json:"user_id"`
	WorkDate string  `json:"work_date"`
	Hours    float64 `json:"hours"`
	Notes    string  `json:"notes"`
	Ctime    int64   `json:"ctime"`
}
