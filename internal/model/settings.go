package model

import "time"

// Feature module names toggled through Settings.Modules.
const (
	ModuleNotes     = "notes"
	ModulePYQs      = "pyqs"
	ModulePredictor = "predictor"
	ModuleSyllabus  = "syllabus"
)

// Settings is the site-wide configuration singleton.
type Settings struct {
	SiteName          string          `json:"siteName"`
	SupportEmail      string          `json:"supportEmail"`
	MaintenanceMode   bool            `json:"maintenanceMode"`
	AllowRegistration bool            `json:"allowRegistration"`
	Modules           map[string]bool `json:"modules"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// DefaultSettings returns the values a freshly created singleton starts with.
func DefaultSettings() Settings {
	return Settings{
		SiteName:          "SmartStudy",
		SupportEmail:      "support@smartstudy.com",
		MaintenanceMode:   false,
		AllowRegistration: true,
		Modules: map[string]bool{
			ModuleNotes:     true,
			ModulePYQs:      true,
			ModulePredictor: true,
			ModuleSyllabus:  true,
		},
	}
}

// ModuleEnabled reports whether the named module is on. Unknown modules are on.
func (s Settings) ModuleEnabled(name string) bool {
	enabled, ok := s.Modules[name]
	return !ok || enabled
}

// SettingsPatch carries a partial settings update.
// Empty strings and nil pointers mean "not supplied"; false is a real value for the flags.
type SettingsPatch struct {
	SiteName          string          `json:"siteName" validate:"omitempty,max=120"`
	SupportEmail      string          `json:"supportEmail" validate:"omitempty,email"`
	MaintenanceMode   *bool           `json:"maintenanceMode"`
	AllowRegistration *bool           `json:"allowRegistration"`
	Modules           map[string]bool `json:"modules"`
}

// Apply merges p into s. Module flags are merged key by key.
func (s *Settings) Apply(p SettingsPatch) {
	if p.SiteName != "" {
		s.SiteName = p.SiteName
	}
	if p.SupportEmail != "" {
		s.SupportEmail = p.SupportEmail
	}
	if p.MaintenanceMode != nil {
		s.MaintenanceMode = *p.MaintenanceMode
	}
	if p.AllowRegistration != nil {
		s.AllowRegistration = *p.AllowRegistration
	}
	if len(p.Modules) > 0 {
		if s.Modules == nil {
			s.Modules = make(map[string]bool, len(p.Modules))
		}
		for name, enabled := range p.Modules {
			s.Modules[name] = enabled
		}
	}
}
