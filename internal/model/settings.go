package model

const (
	SettingCompanyName = "company_name"
	SettingLogoURL     = "logo_url"
	SettingDateFormat  = "date_format"
)

// Settings is the global application configuration stored in the database.
type Settings struct {
	CompanyName string `json:"company_name"`
	LogoURL     string `json:"logo_url"`
	DateFormat  string `json:"date_format"`
}
