package entity

type ServerTimeResponse struct {
	ServerTime int64 `json:"serverTime"`
}

type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
	Time   int64  `json:"time"`
}

type Ticker24h struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	WeightedAvgPrice   string `json:"weightedAvgPrice"`
	LastPrice          string `json:"lastPrice"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	OpenTime           int64  `json:"openTime"`
	CloseTime          int64  `json:"closeTime"`
	Count              int64  `json:"count"`
}

type AccountAsset struct {
	Asset              string `json:"asset"`
	WalletBalance      string `json:"walletBalance"`
	UnrealizedProfit   string `json:"unrealizedProfit"`
	MarginBalance      string `json:"marginBalance"`
	AvailableBalance   string `json:"availableBalance"`
	MaxWithdrawAmount  string `json:"maxWithdrawAmount"`
	CrossWalletBalance string `json:"crossWalletBalance"`
	CrossUnPnl         string `json:"crossUnPnl"`
	MarginAvailable    bool   `json:"marginAvailable"`
	UpdateTime         int64  `json:"updateTime"`
}

type AccountSnapshot struct {
	TotalWalletBalance    string         `json:"totalWalletBalance"`
	TotalUnrealizedProfit string         `json:"totalUnrealizedProfit"`
	TotalMarginBalance    string         `json:"totalMarginBalance"`
	AvailableBalance      string         `json:"availableBalance"`
	MaxWithdrawAmount     string         `json:"maxWithdrawAmount"`
	CanTrade              bool           `json:"canTrade"`
	CanDeposit            bool           `json:"canDeposit"`
	CanWithdraw           bool           `json:"canWithdraw"`
	UpdateTime            int64          `json:"updateTime"`
	Assets                []AccountAsset `json:"assets"`
}

type PositionRisk struct {
	Symbol           string `json:"symbol"`
	PositionAmt      string `json:"positionAmt"`
	EntryPrice       string `json:"entryPrice"`
	MarkPrice        string `json:"markPrice"`
	UnRealizedProfit string `json:"unRealizedProfit"`
	LiquidationPrice string `json:"liquidationPrice"`
	Leverage         string `json:"leverage"`
	MarginType       string `json:"marginType"`
	PositionSide     string `json:"positionSide"`
	UpdateTime       int64  `json:"updateTime"`
}
