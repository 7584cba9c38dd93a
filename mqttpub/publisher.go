package mqttpub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/angas/elpriskvart-go/calc"
	"github.com/angas/elpriskvart-go/config"
	"github.com/angas/elpriskvart-go/coordinator"
	"github.com/angas/elpriskvart-go/prices"
	"github.com/angas/elpriskvart-go/slice"
)

const publishTimeout = 5 * time.Second

type pricePointMessage struct {
	TimeStart time.Time `json:"time_start"`
	SekPerKWh float64   `json:"sek_per_kwh"`
	TotalSek  float64   `json:"total_sek_per_kwh"`
}

type currentMessage struct {
	PriceArea string     `json:"price_area"`
	SekPerKWh *float64   `json:"sek_per_kwh"`
	OrePerKWh *float64   `json:"ore_per_kwh"`
	TotalSek  *float64   `json:"total_sek_per_kwh"`
	TimeStart *time.Time `json:"time_start,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Publisher announces refreshed prices on MQTT topics so home
// automation consumers can subscribe instead of polling the API.
// All price messages are retained.
type Publisher struct {
	client mqtt.Client
	logger *slog.Logger
	cnfg   config.AppConfigEnergyPrice
	prefix string
	loc    *time.Location
}

func New(cnfg *config.AppConfig, loc *time.Location) *Publisher {
	logger := slog.Default().With("module", "mqtt")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", *cnfg.Mqtt.Host, cnfg.Mqtt.Port))
	opts.SetClientID("elpriskvart")
	opts.SetUsername(cnfg.Mqtt.Username)
	opts.SetPassword(cnfg.Mqtt.Password)
	opts.SetAutoReconnect(true)
	opts.SetWill(cnfg.Mqtt.GetTopicPrefix()+"/availability", "offline", 0, true)
	opts.OnConnect = func(client mqtt.Client) {
		logger.Info("MQTT connected")
		client.Publish(cnfg.Mqtt.GetTopicPrefix()+"/availability", 0, true, "online")
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", slog.Any("error", err))
	}

	mqtt.CRITICAL = newMqttLogger(logger, slog.LevelError)
	mqtt.ERROR = newMqttLogger(logger, slog.LevelError)
	mqtt.WARN = newMqttLogger(logger, slog.LevelWarn)

	return &Publisher{
		client: mqtt.NewClient(opts),
		logger: logger,
		cnfg:   cnfg.EnergyPrice,
		prefix: cnfg.Mqtt.GetTopicPrefix(),
		loc:    loc,
	}
}

func (p *Publisher) Connect() error {
	p.logger.Debug("connecting MQTT client")
	if token := p.client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (p *Publisher) Disconnect() {
	p.publish(p.prefix+"/availability", "offline")
	p.client.Disconnect(250)
}

// PublishSnapshot fans the refreshed cache out to the price topics.
// Wired as a coordinator update listener.
func (p *Publisher) PublishSnapshot(snap coordinator.Snapshot) {
	now := time.Now().In(p.loc)
	surcharge := p.cnfg.GetSurchargeOre()

	current := currentMessage{
		PriceArea: p.cnfg.Area,
		UpdatedAt: snap.LastTickAt,
	}
	if interval, ok := snap.TodaySeries().At(now); ok {
		start := interval.Start
		current.TimeStart = &start
		sek := calc.Round(interval.Price, calc.SekDecimals)
		ore := calc.SekToOre(interval.Price)
		total := calc.TotalSek(interval.Price, surcharge)
		current.SekPerKWh = &sek
		current.OrePerKWh = &ore
		current.TotalSek = &total
	}
	p.publishJSON(p.prefix+"/current", current)

	p.publishSeries(p.prefix+"/today", snap.TodaySeries(), surcharge)
	p.publishSeries(p.prefix+"/tomorrow", snap.TomorrowSeries(), surcharge)
}

func (p *Publisher) publishSeries(topic string, series prices.DailySeries, surchargeOre float64) {
	msg := slice.Map(series, func(i prices.Interval) pricePointMessage {
		return pricePointMessage{
			TimeStart: i.Start,
			SekPerKWh: calc.Round(i.Price, calc.SekDecimals),
			TotalSek:  calc.TotalSek(i.Price, surchargeOre),
		}
	})
	p.publishJSON(topic, msg)
}

func (p *Publisher) publishJSON(topic string, v any) {
	buf, err := json.Marshal(v)
	if err != nil {
		p.logger.Error("marshalling MQTT message", slog.String("topic", topic), slog.Any("error", err))
		return
	}
	p.publish(topic, buf)
}

func (p *Publisher) publish(topic string, payload any) {
	token := p.client.Publish(topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.logger.Warn("MQTT publish timed out", slog.String("topic", topic))
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("MQTT publish failed", slog.String("topic", topic), slog.Any("error", err))
	}
}
