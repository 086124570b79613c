package common

// Relative strength method identifiers.
const (
	MethodMansfield = "mansfield"
	MethodIBD       = "ibd"
	MethodEPS       = "eps"
)

// Universe source codes.
const (
	UniverseSPX  = "SPX"
	UniverseNDX  = "NDX"
	UniverseDJIA = "DJIA"
	UniverseSOX  = "SOX"
	UniverseTWSE = "TWSE"
	UniverseTPEX = "TPEX"
	UniverseESB  = "ESB"
)

// Moving average types for the Mansfield calculation.
const (
	MovingAverageSimple      = "SMA"
	MovingAverageExponential = "EMA"
)

const (
	// TradingDaysPerMonth approximates one calendar month of trading days.
	TradingDaysPerMonth = 21
	// TradingDaysPerQuarter approximates one quarter of trading days.
	TradingDaysPerQuarter = 63
	// TradingDaysPerYear approximates one year of trading days.
	TradingDaysPerYear = 252
)
