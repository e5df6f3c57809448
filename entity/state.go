package entity

// StateDefinition is the externally stored screen for one state key: a phrase
// template and a button layout per role. Layouts are JSON arrays of rows of
// button keys, e.g. [["daily_report.today","daily_report.yesterday"],["back"]].
type StateDefinition struct {
	Key            string `json:"state_key" bson:"state_key"`
	Comment        string `json:"comment" bson:"comment"`
	PhraseAdmin    string `json:"phrase_admin" bson:"phrase_admin"`
	PhraseManager  string `json:"phrase_manager" bson:"phrase_manager"`
	PhraseUser     string `json:"phrase_user" bson:"phrase_user"`
	ButtonsAdmin   string `json:"buttons_admin" bson:"buttons_admin"`
	ButtonsManager string `json:"buttons_manager" bson:"buttons_manager"`
	ButtonsUser    string `json:"buttons_user" bson:"buttons_user"`
}

// Phrase returns the template for the given role, empty when the role has no
// phrase configured.
func (s *StateDefinition) Phrase(role string) string {
	switch role {
	case AdminRole:
		return s.PhraseAdmin
	case ManagerRole:
		return s.PhraseManager
	case UserRole:
		return s.PhraseUser
	}
	return ""
}

// Layout returns the raw button layout for the given role, empty when none is
// configured.
func (s *StateDefinition) Layout(role string) string {
	switch role {
	case AdminRole:
		return s.ButtonsAdmin
	case ManagerRole:
		return s.ButtonsManager
	case UserRole:
		return s.ButtonsUser
	}
	return ""
}

// ButtonDefinition maps a callback key to its display label.
type ButtonDefinition struct {
	Key   string `json:"key" bson:"key"`
	Label string `json:"label" bson:"label"`
}
