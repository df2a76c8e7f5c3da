package domain

// Side is the direction of a fill.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// String returns the string representation of Side.
func (s Side) String() string {
	return string(s)
}

// IsValid checks if the side is a valid value.
func (s Side) IsValid() bool {
	return s == SideBuy || s == SideSell
}

// Sign returns -1 for BUY and +1 for SELL, the cashflow direction of the side.
func (s Side) Sign() int64 {
	if s == SideBuy {
		return -1
	}
	return 1
}

// Opposite returns the side that closes a position opened on s.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OptionType is CALL or PUT. Empty for non-option instruments.
type OptionType string

const (
	OptionTypeNone OptionType = ""
	OptionTypeCall OptionType = "CALL"
	OptionTypePut  OptionType = "PUT"
)

// String returns the string representation of OptionType.
func (o OptionType) String() string {
	return string(o)
}

// IsValid checks if the option type is CALL or PUT.
func (o OptionType) IsValid() bool {
	return o == OptionTypeCall || o == OptionTypePut
}

// AssetClass classifies the underlying instrument.
type AssetClass string

const (
	AssetClassEquity AssetClass = "EQUITY"
	AssetClassETF    AssetClass = "ETF"
	AssetClassIndex  AssetClass = "INDEX"
	AssetClassFuture AssetClass = "FUTURE"
)

// String returns the string representation of AssetClass.
func (a AssetClass) String() string {
	return string(a)
}
