package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/angas/elpriskvart-go/days"
	"github.com/angas/elpriskvart-go/elprisetjustnu"
	"github.com/angas/elpriskvart-go/prices"
)

// One-shot fetch of a single day's prices, for manual inspection.
func main() {
	area := flag.String("area", "SE4", "price area (SE1-SE4)")
	date := flag.String("date", "", "date to fetch (2006-01-02), default today")
	baseUrl := flag.String("base-url", "", "override API base URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	loc, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		panic(err)
	}

	day := days.FromTime(time.Now(), loc)
	if *date != "" {
		day, err = days.Parse(*date)
		if err != nil {
			panic(err)
		}
	}

	client := elprisetjustnu.New(logger, *baseUrl, *area)
	res := client.FetchDay(context.Background(), day)
	switch res.Status {
	case elprisetjustnu.StatusNotYetAvailable:
		fmt.Printf("prices for %s in %s are not published yet\n", day, *area)
		os.Exit(1)
	case elprisetjustnu.StatusFailed:
		panic(res.Err)
	}

	series := prices.Parse(logger, res.Raw, day, loc)
	for _, p := range series {
		fmt.Printf("%s  %.4f SEK/kWh\n", p.Start.Format("2006-01-02 15:04"), p.Price)
	}
}
