package icon

import "github.com/tonymushah/mangadex-api-sub002/style"

// Icon identifies a symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Search
	Download
	Lock
	Follow
	Rating
	Info
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    style.Fg(style.SuccessColor)(""),
		plain:   style.Fg(style.SuccessColor)("+"),
		kaomoji: style.Fg(style.SuccessColor)("(ᵔ◡ᵔ)"),
		squares: style.Fg(style.SuccessColor)("■"),
	},
	Fail: {
		emoji:   "❌",
		nerd:    style.Fg(style.ErrorColor)(""),
		plain:   style.Fg(style.ErrorColor)("x"),
		kaomoji: style.Fg(style.ErrorColor)("(╥﹏╥)"),
		squares: style.Fg(style.ErrorColor)("■"),
	},
	Progress: {
		emoji:   "⏳",
		nerd:    style.Fg(style.AccentColor)(""),
		plain:   style.Fg(style.AccentColor)("~"),
		kaomoji: style.Fg(style.AccentColor)("(・_・ヾ"),
		squares: style.Fg(style.AccentColor)("□"),
	},
	Search: {
		emoji:   "🔍",
		nerd:    style.Fg(style.SecondaryColor)(""),
		plain:   style.Fg(style.SecondaryColor)("?"),
		kaomoji: style.Fg(style.SecondaryColor)("(¬‿¬)"),
		squares: style.Fg(style.SecondaryColor)("▣"),
	},
	Download: {
		emoji:   "📥",
		nerd:    style.Fg(style.AccentColor)(""),
		plain:   style.Fg(style.AccentColor)("v"),
		kaomoji: style.Fg(style.AccentColor)("(っ˘ڡ˘ς)"),
		squares: style.Fg(style.AccentColor)("▼"),
	},
	Lock: {
		emoji:   "🔒",
		nerd:    style.Fg(style.WarningColor)(""),
		plain:   style.Fg(style.WarningColor)("#"),
		kaomoji: style.Fg(style.WarningColor)("(ㆆ_ㆆ)"),
		squares: style.Fg(style.WarningColor)("▩"),
	},
	Follow: {
		emoji:   "💖",
		nerd:    style.Fg(style.Pink)(""),
		plain:   style.Fg(style.Pink)("<3"),
		kaomoji: style.Fg(style.Pink)("(♡˙︶˙♡)"),
		squares: style.Fg(style.Pink)("■"),
	},
	Rating: {
		emoji:   "⭐",
		nerd:    style.Fg(style.Yellow)(""),
		plain:   style.Fg(style.Yellow)("*"),
		kaomoji: style.Fg(style.Yellow)("☆彡"),
		squares: style.Fg(style.Yellow)("▲"),
	},
	Info: {
		emoji:   "ℹ️",
		nerd:    style.Fg(style.Blue)(""),
		plain:   style.Fg(style.Blue)("i"),
		kaomoji: style.Fg(style.Blue)("(・ω・)"),
		squares: style.Fg(style.Blue)("□"),
	},
}
