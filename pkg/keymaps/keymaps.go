package keymaps

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type KeyDefinition struct {
	DefaultKey string
	Help       string
}

var KeyDefinitions = map[string]KeyDefinition{
	"ShowHelp":           {"?", "show/hide commands"},
	"QuitApp":            {"q", "quit"},
	"GoHome":             {"1", "go to dashboard"},
	"GoTodo":             {"2", "go to todos"},
	"GoSchedule":         {"3", "go to schedule"},
	"GoHistory":          {"4", "go to history"},
	"GoSignup":           {"ctrl+s", "switch between login and signup"},
	"Logout":             {"L", "log out"},
	"Refresh":            {"r", "reload from server"},
	"ToggleStatus":       {"space", "toggle status"},
	"AddEntry":           {"a", "add entry"},
	"EditEntry":          {"e", "edit entry"},
	"DeleteEntry":        {"d", "delete entry"},
	"PrevDay":            {"ctrl+left,[", "previous day"},
	"NextDay":            {"ctrl+right,]", "next day"},
	"JumpToToday":        {"t", "jump to today"},
	"ToggleCalendarView": {"c", "toggle calendar view"},
	"CalendarLeft":       {"left", "move left in calendar"},
	"CalendarRight":      {"right", "move right in calendar"},
	"CalendarUp":         {"up", "move up in calendar"},
	"CalendarDown":       {"down", "move down in calendar"},
	"CalendarSelect":     {"enter", "select day in calendar"},
	"ToggleSortBy":       {"s", "cycle sort by"},
	"ToggleGroupBy":      {"g", "cycle group by"},
	"ToggleSortOrder":    {"o", "toggle sort order"},
}

type KeyMap struct {
	ShowHelp           key.Binding
	QuitApp            key.Binding
	GoHome             key.Binding
	GoTodo             key.Binding
	GoSchedule         key.Binding
	GoHistory          key.Binding
	GoSignup           key.Binding
	Logout             key.Binding
	Refresh            key.Binding
	ToggleStatus       key.Binding
	AddEntry           key.Binding
	EditEntry          key.Binding
	DeleteEntry        key.Binding
	PrevDay            key.Binding
	NextDay            key.Binding
	JumpToToday        key.Binding
	ToggleCalendarView key.Binding
	CalendarLeft       key.Binding
	CalendarRight      key.Binding
	CalendarUp         key.Binding
	CalendarDown       key.Binding
	CalendarSelect     key.Binding
	ToggleSortBy       key.Binding
	ToggleGroupBy      key.Binding
	ToggleSortOrder    key.Binding
}

func (km *KeyMap) bindings() map[string]*key.Binding {
	return map[string]*key.Binding{
		"ShowHelp":           &km.ShowHelp,
		"QuitApp":            &km.QuitApp,
		"GoHome":             &km.GoHome,
		"GoTodo":             &km.GoTodo,
		"GoSchedule":         &km.GoSchedule,
		"GoHistory":          &km.GoHistory,
		"GoSignup":           &km.GoSignup,
		"Logout":             &km.Logout,
		"Refresh":            &km.Refresh,
		"ToggleStatus":       &km.ToggleStatus,
		"AddEntry":           &km.AddEntry,
		"EditEntry":          &km.EditEntry,
		"DeleteEntry":        &km.DeleteEntry,
		"PrevDay":            &km.PrevDay,
		"NextDay":            &km.NextDay,
		"JumpToToday":        &km.JumpToToday,
		"ToggleCalendarView": &km.ToggleCalendarView,
		"CalendarLeft":       &km.CalendarLeft,
		"CalendarRight":      &km.CalendarRight,
		"CalendarUp":         &km.CalendarUp,
		"CalendarDown":       &km.CalendarDown,
		"CalendarSelect":     &km.CalendarSelect,
		"ToggleSortBy":       &km.ToggleSortBy,
		"ToggleGroupBy":      &km.ToggleGroupBy,
		"ToggleSortOrder":    &km.ToggleSortOrder,
	}
}

// BuildKeyMap applies configOverrides on top of the defaults. Action names
// match case-insensitively since viper lowercases map keys.
func BuildKeyMap(configOverrides map[string]string) KeyMap {
	overrides := make(map[string]string, len(configOverrides))
	for action, keys := range configOverrides {
		overrides[strings.ToLower(action)] = keys
	}

	km := KeyMap{}
	for action, binding := range km.bindings() {
		def := KeyDefinitions[action]
		keyStr := def.DefaultKey
		if override, exists := overrides[strings.ToLower(action)]; exists && override != "" {
			keyStr = override
		}
		*binding = parseKeyBinding(keyStr, def.DefaultKey, def.Help)
	}
	return km
}

func parseKeyBinding(keyStr, defaultKey, helpText string) key.Binding {
	if strings.TrimSpace(keyStr) == "" {
		keyStr = defaultKey
	}

	// Handle multiple keys separated by commas
	var keys []string
	for _, k := range strings.Split(keyStr, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(keys[0], helpText),
	)
}

// GetDefaultKeyMappings returns the default key mappings for configuration
func GetDefaultKeyMappings() map[string]string {
	keyMappings := make(map[string]string)
	for action, def := range KeyDefinitions {
		keyMappings[action] = def.DefaultKey
	}
	return keyMappings
}
