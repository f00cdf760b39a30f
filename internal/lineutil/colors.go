package lineutil

// Spacing values following the 4-point grid used by the flex cards.
const (
	SpacingXS  = "4px"
	SpacingS   = "8px"
	SpacingM   = "12px"
	SpacingL   = "16px"
	SpacingXL  = "20px"
	SpacingXXL = "24px"

	LineSpacingNormal = "6px"
)

// Colors from the LINE design system palette.
// Reference: https://designsystem.line.me/LDSM/foundation/color/line-color-guide-ex-en
const (
	ColorLineGreen = "#06C755"
	ColorWhite     = "#FFFFFF"
	ColorGray300   = "#DFDFDF"
	ColorGray600   = "#777777"
	ColorGray900   = "#111111"
	ColorRed400    = "#FF334B"

	ColorPrimary  = ColorLineGreen
	ColorDanger   = ColorRed400
	ColorText     = ColorGray900
	ColorLabel    = "#666666"
	ColorHeroText = ColorWhite
)
