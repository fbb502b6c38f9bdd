package tgCallback

// Callback buttons uniques
const (
	InstrumentsPage string = "instruments_page" // data: page|typeID|name
)

// Telegram caps callback data at 64 bytes, the name filter is cut to fit.
const MaxNameFilterBytes = 32
