package service

import "github.com/xxxsen/fieldorder/internal/model"

// The types below are the only shapes ever handed to an anonymous share
// visitor. They carry no internal ids, audit or soft-delete fields.

type OrderView struct {
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Summary      string          `json:"summary"`
	Status       string          `json:"status"`
	Priority     string          `json:"priority"`
	CustomerName string          `json:"customer_name"`
	CustomerRef  string          `json:"customer_ref"`
	Location     string          `json:"location"`
	DueDate      string          `json:"due_date"`
	CreatedAt    int64           `json:"created_at"`
	Journal      []JournalView   `json:"journal"`
	Summaries    []SummaryView   `json:"summaries"`
	Photos       []PhotoView     `json:"photos"`
	TimeEntries  []TimeEntryView `json:"time_entries"`
	TotalHours   float64         `json:"total_hours"`
}

type JournalView struct {
	Content     string      `json:"content"`
	ContentHTML string      `json:"content_html"`
	CreatedAt   int64       `json:"created_at"`
	Photos      []PhotoView `json:"photos"`
}

type SummaryView struct {
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}

type PhotoView struct {
	Caption     string `json:"caption"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	CreatedAt   int64  `json:"created_at"`
}

type TimeEntryView struct {
	Technician string  `json:"technician"`
	Stage      string  `json:"stage,omitempty"`
	WorkDate   string  `json:"work_date"`
	Hours      float64 `json:"hours"`
	Notes      string  `json:"notes"`
}

type CollectionView struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ExpiresAt   int64      `json:"expires_at"`
	Files       []FileView `json:"files"`
	ArchiveURL  string     `json:"archive_url,omitempty"`
}

type FileView struct {
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

type Branding struct {
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url"`
	DateFormat  string `json:"date_format"`
}

func brandingFrom(settings *model.Settings) Branding {
	if settings == nil {
		return Branding{}
	}
	return Branding{
		CompanyName: settings.CompanyName,
		LogoURL:     settings.LogoURL,
		DateFormat:  settings.DateFormat,
	}
}

// PublicShareView is the full response body of a share page.
type PublicShareView struct {
	Kind       model.ResourceKind `json:"kind"`
	ExpiresAt  int64              `json:"expires_at"`
	Branding   Branding           `json:"branding"`
	Order      *OrderView         `json:"order,omitempty"`
	Collection *CollectionView    `json:"collection,omitempty"`
}
