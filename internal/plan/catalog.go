package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Plan describes a purchasable subscription plan. Amounts are in the
// currency's smallest unit (cents for USD).
type Plan struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	UnitAmount int64    `json:"unit_amount"`
	Currency   string   `json:"currency"`
	Interval   string   `json:"interval"`
	TrialDays  int64    `json:"trial_days"`
	Features   []string `json:"features"`
}

type plansFile struct {
	Plans []Plan `json:"plans"`
}

// Catalog is the in-memory plan registry. Plans are loaded once at startup;
// there is a single plan today but the catalog keeps the door open.
type Catalog struct {
	mu    sync.RWMutex
	plans map[string]*Plan
}

func NewCatalog() *Catalog {
	return &Catalog{plans: make(map[string]*Plan)}
}

// LoadFromFile reads the plan catalog from a JSON file. A missing file is not
// an error: the built-in default catalog is returned instead, matching the
// single hard-coded plan the product launched with.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read plans config: %w", err)
	}

	var file plansFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse plans config: %w", err)
	}
	if len(file.Plans) == 0 {
		return nil, fmt.Errorf("plans config %s contains no plans", path)
	}

	catalog := NewCatalog()
	for i := range file.Plans {
		catalog.Register(&file.Plans[i])
	}
	return catalog, nil
}

// Default returns the built-in catalog: the Pro plan at $9.99/month with a
// 7-day trial.
func Default() *Catalog {
	catalog := NewCatalog()
	catalog.Register(&Plan{
		ID:         "pro",
		Name:       "Pro Plan",
		UnitAmount: 999,
		Currency:   "usd",
		Interval:   "month",
		TrialDays:  7,
		Features: []string{
			"Access to viral video database",
			"Advanced analytics & insights",
			"Unlimited saved videos",
			"AI-powered content recommendations",
			"Export reports",
			"Priority support",
		},
	})
	return catalog
}

func (c *Catalog) Register(p *Plan) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.plans[p.ID] = p
}

func (c *Catalog) Get(planID string) *Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.plans[planID]
}

func (c *Catalog) Exists(planID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.plans[planID]
	return ok
}

func (c *Catalog) All() []*Plan {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Plan, 0, len(c.plans))
	for _, p := range c.plans {
		result = append(result, p)
	}
	return result
}
