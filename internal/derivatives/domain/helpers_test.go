package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func testOptionContract() *OptionContract {
	return &OptionContract{
		DerivativeInstrument: DerivativeInstrument{
			TenantID:        "tenant-1",
			InstrumentID:    "OPT-AAPL-C-100",
			Symbol:          "AAPL260618C100",
			Underlying:      "AAPL",
			Class:           InstrumentClassOption,
			Currency:        "USD",
			Multiplier:      decimal.NewFromInt(100),
			ExpiryDate:      time.Now().AddDate(0, 6, 0),
			MarketPrice:     decimal.NewFromFloat(10.45),
			UnderlyingPrice: decimal.NewFromInt(100),
			Status:          InstrumentStatusActive,
		},
		OptionType:   OptionTypeCall,
		OptionStyle:  OptionStyleEuropean,
		StrikePrice:  decimal.NewFromInt(100),
		ExerciseType: ExerciseTypeCash,
	}
}
