package styles

// Status icons for check and delivery output.
var (
	IconPass = "✔"
	IconWarn = "●"
	IconFail = "✘"
	IconSkip = "○"
	IconBell = "\U000F009A" // 󰂚
)
