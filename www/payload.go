package www

import (
	"time"

	"github.com/angas/elpriskvart-go/calc"
	"github.com/angas/elpriskvart-go/coordinator"
	"github.com/angas/elpriskvart-go/prices"
	"github.com/angas/elpriskvart-go/slice"
)

type PricePoint struct {
	TimeStart time.Time  `json:"time_start"`
	TimeEnd   *time.Time `json:"time_end,omitempty"`
	SekPerKWh float64    `json:"sek_per_kwh"`
	OrePerKWh float64    `json:"ore_per_kwh"`
	TotalSek  float64    `json:"total_sek_per_kwh"`
	TotalOre  float64    `json:"total_ore_per_kwh"`
}

type DayPayload struct {
	Day    string       `json:"day"`
	Prices []PricePoint `json:"prices"`
	MinSek *float64     `json:"min_sek_per_kwh,omitempty"`
	MaxSek *float64     `json:"max_sek_per_kwh,omitempty"`
	MinOre *float64     `json:"min_ore_per_kwh,omitempty"`
	MaxOre *float64     `json:"max_ore_per_kwh,omitempty"`
}

type CurrentPayload struct {
	PriceArea    string     `json:"price_area"`
	SekPerKWh    *float64   `json:"sek_per_kwh"`
	OrePerKWh    *float64   `json:"ore_per_kwh"`
	TotalSek     *float64   `json:"total_sek_per_kwh"`
	TotalOre     *float64   `json:"total_ore_per_kwh"`
	SurchargeOre float64    `json:"surcharge_ore"`
	SurchargeSek float64    `json:"surcharge_sek"`
	TimeStart    *time.Time `json:"time_start,omitempty"`
	LastUpdate   *time.Time `json:"last_api_data_update,omitempty"`
}

func pricePoint(interval prices.Interval, surchargeOre float64) PricePoint {
	p := PricePoint{
		TimeStart: interval.Start,
		SekPerKWh: calc.Round(interval.Price, calc.SekDecimals),
		OrePerKWh: calc.SekToOre(interval.Price),
		TotalSek:  calc.TotalSek(interval.Price, surchargeOre),
		TotalOre:  calc.TotalOre(interval.Price, surchargeOre),
	}
	if !interval.End.IsZero() {
		end := interval.End
		p.TimeEnd = &end
	}
	return p
}

func dayPayload(day string, series prices.DailySeries, surchargeOre float64) DayPayload {
	payload := DayPayload{
		Day: day,
		Prices: slice.Map(series, func(i prices.Interval) PricePoint {
			return pricePoint(i, surchargeOre)
		}),
	}
	if low, high, ok := series.MinMax(); ok {
		payload.MinSek = ptr(calc.Round(low, calc.SekDecimals))
		payload.MaxSek = ptr(calc.Round(high, calc.SekDecimals))
		payload.MinOre = ptr(calc.SekToOre(low))
		payload.MaxOre = ptr(calc.SekToOre(high))
	}
	return payload
}

func currentPayload(snap coordinator.Snapshot, area string, surchargeOre float64, now time.Time) CurrentPayload {
	payload := CurrentPayload{
		PriceArea:    area,
		SurchargeOre: calc.Round(surchargeOre, calc.OreDecimals),
		SurchargeSek: calc.OreToSek(surchargeOre),
	}
	if !snap.LastTickAt.IsZero() {
		last := snap.LastTickAt
		payload.LastUpdate = &last
	}

	interval, ok := snap.TodaySeries().At(now)
	if !ok {
		return payload
	}

	start := interval.Start
	payload.TimeStart = &start
	payload.SekPerKWh = ptr(calc.Round(interval.Price, calc.SekDecimals))
	payload.OrePerKWh = ptr(calc.SekToOre(interval.Price))
	payload.TotalSek = ptr(calc.TotalSek(interval.Price, surchargeOre))
	payload.TotalOre = ptr(calc.TotalOre(interval.Price, surchargeOre))
	return payload
}

func ptr[T any](v T) *T {
	return &v
}
