package models

// View represents a specific UI view in the application
type View string

// Available views in the application
const (
	ViewConnecting   View = "connecting"
	ViewPlayer       View = "player"
	ViewDisconnected View = "disconnected"
	ViewSourceSelect View = "source-select"
	ViewHelp         View = "help"
	ViewLoading      View = "loading"
)

// Modal represents a UI intended to be temporarily shown to the user before returning to the original view
type Modal string

// Available modals in the application
const (
	ModalNone         Modal = "none"
	ModalHelp         Modal = "help"
	ModalSourceSelect Modal = "source_select"
)
