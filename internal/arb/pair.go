package arb

// MarketPair links one Polymarket binary market to its Kalshi counterpart.
// Pairs are built once at startup and stay fixed for the process lifetime.
type MarketPair struct {
	PMTokenYes   string
	PMTokenNo    string
	PMTitle      string
	KalshiTicker string
	KalshiTitle  string
}
