package styles

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconBookmark = "\uf02e"     // nf-fa-bookmark
	IconSparkles = "\U000F0674" // nf-md-creation
	IconStar     = "\uf005"     // nf-fa-star
	IconWorkflow = "\U000F1520" // nf-md-sitemap
	IconBell     = "\uf0f3"     // nf-fa-bell
)

// Status icons
var (
	IconCheck   = "\u2714"
	IconCross   = "\u2718"
	IconWarning = "\u26a0"
	IconPending = "\u2026"
)
