package models

import "strings"

// ActionKind classifies an audited activity. The closed set below covers
// every event the application emits itself; anything else is carried with the
// "other:" prefix so unknown tags survive a round trip through storage.
type ActionKind string

const (
	ActionLogin                  ActionKind = "login"
	ActionLogout                 ActionKind = "logout"
	ActionGenerateText           ActionKind = "generate_text"
	ActionViewHistory            ActionKind = "view_history"
	ActionViewTransitionAnalysis ActionKind = "view_transition_analysis"
	ActionViewCoherenceReport    ActionKind = "view_coherence_report"
	ActionRegister               ActionKind = "register"
	ActionProfileUpdate          ActionKind = "profile_update"
	ActionPasswordChange         ActionKind = "password_change"
	ActionPageView               ActionKind = "page_view"
	ActionClearHistory           ActionKind = "clear_history"
)

// OtherActionPrefix marks actions outside the known set.
const OtherActionPrefix = "other:"

// OtherAction wraps an arbitrary tag as an "other:" action.
func OtherAction(tag string) ActionKind {
	return ActionKind(OtherActionPrefix + tag)
}

// IsKnown reports whether k is one of the enumerated action kinds.
func (k ActionKind) IsKnown() bool {
	switch k {
	case ActionLogin, ActionLogout, ActionGenerateText,
		ActionViewHistory, ActionViewTransitionAnalysis, ActionViewCoherenceReport,
		ActionRegister, ActionProfileUpdate, ActionPasswordChange,
		ActionPageView, ActionClearHistory:
		return true
	default:
		return false
	}
}

// IsOther reports whether k carries the "other:" prefix.
func (k ActionKind) IsOther() bool {
	return strings.HasPrefix(string(k), OtherActionPrefix)
}

// Valid reports whether k is a known action or a non-empty "other:" action.
func (k ActionKind) Valid() bool {
	if k.IsKnown() {
		return true
	}
	return k.IsOther() && len(k) > len(OtherActionPrefix)
}

// Tag returns the bare tag of an "other:" action, or the action itself
// for known kinds.
func (k ActionKind) Tag() string {
	if k.IsOther() {
		return string(k[len(OtherActionPrefix):])
	}
	return string(k)
}

func (k ActionKind) String() string {
	return string(k)
}
