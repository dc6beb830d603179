package prices

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/icodeforyou/spotprice-go/convert"
	"github.com/icodeforyou/spotprice-go/types"
)

const (
	DefaultLowerLimit = 0.0
	DefaultUpperLimit = 10.0
)

// PriceLimits are the alert thresholds in c/kWh. Lower and Upper are checked
// independently, no ordering between them is enforced.
type PriceLimits struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

func DefaultLimits() PriceLimits {
	return PriceLimits{Lower: DefaultLowerLimit, Upper: DefaultUpperLimit}
}

type Classification string

const (
	Within Classification = "within"
	Below  Classification = "below"
	Above  Classification = "above"
)

// Evaluate classifies price against limits, both bounds inclusive.
// With inverted limits a price can be both below and above; below wins.
func Evaluate(limits PriceLimits, price float64) Classification {
	switch {
	case price < limits.Lower:
		return Below
	case price > limits.Upper:
		return Above
	default:
		return Within
	}
}

type NotifyMode string

const (
	NotifyLower  NotifyMode = "lower"
	NotifyHigher NotifyMode = "higher"
	NotifyBoth   NotifyMode = "both"
)

func ParseNotifyMode(s string) (NotifyMode, error) {
	switch m := NotifyMode(strings.ToLower(strings.TrimSpace(s))); m {
	case NotifyLower, NotifyHigher, NotifyBoth:
		return m, nil
	case "":
		return NotifyLower, nil
	default:
		return "", fmt.Errorf("unknown notify mode %q", s)
	}
}

const (
	MinLimit = 0.0
	MaxLimit = 100.0
)

// NewSettings checks both limits against MinLimit..MaxLimit and parses notify.
// Inverted limits are allowed.
func NewSettings(lower, upper float64, notify string) (Settings, error) {
	if err := checkLimitRange("lower", lower); err != nil {
		return Settings{}, err
	}
	if err := checkLimitRange("upper", upper); err != nil {
		return Settings{}, err
	}
	mode, err := ParseNotifyMode(notify)
	if err != nil {
		return Settings{}, err
	}
	return Settings{
		Limits: PriceLimits{Lower: lower, Upper: upper},
		Notify: mode,
	}, nil
}

func checkLimitRange(name string, v float64) error {
	if math.IsNaN(v) || v < MinLimit || v > MaxLimit {
		return fmt.Errorf("%s limit must be between %.0f and %.0f", name, MinLimit, MaxLimit)
	}
	return nil
}

// ShouldAlert reports whether c is a classification the user asked to be told about.
func (m NotifyMode) ShouldAlert(c Classification) bool {
	switch c {
	case Below:
		return m == NotifyLower || m == NotifyBoth
	case Above:
		return m == NotifyHigher || m == NotifyBoth
	default:
		return false
	}
}

type Settings struct {
	Limits PriceLimits `json:"limits"`
	Notify NotifyMode  `json:"notify"`
}

func DefaultSettings() Settings {
	return Settings{Limits: DefaultLimits(), Notify: NotifyLower}
}

// LimitsStore holds the settings shared between the web UI, the config
// watcher and the monitor. Readers always see a complete snapshot.
type LimitsStore struct {
	mu       sync.RWMutex
	settings Settings
}

func NewLimitsStore(s Settings) *LimitsStore {
	return &LimitsStore{settings: s}
}

func (s *LimitsStore) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *LimitsStore) Set(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

type Alert struct {
	Point          types.PricePoint `json:"point"`
	Classification Classification   `json:"classification"`
	Limits         PriceLimits      `json:"limits"`
	At             time.Time        `json:"at"`
}

func (a Alert) Message() string {
	switch a.Classification {
	case Below:
		return fmt.Sprintf("Current price (%s) is lower than the set lower limit (%s)!",
			convert.PriceString(a.Point.Price), convert.PriceString(a.Limits.Lower))
	case Above:
		return fmt.Sprintf("Current price (%s) is higher than the set upper limit (%s)!",
			convert.PriceString(a.Point.Price), convert.PriceString(a.Limits.Upper))
	default:
		return fmt.Sprintf("Current price (%s) is within limits", convert.PriceString(a.Point.Price))
	}
}
