package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		supply         int
		demand         int
		capacityFactor float64
		minActivity    int
		wantEffective  int
		wantStatus     ZoneStatus
	}{
		{
			name:           "net supply above threshold",
			supply:         3,
			demand:         2,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  6,
			wantStatus:     StatusNetSupply,
		},
		{
			name:           "below threshold is unsupported regardless of net sign",
			supply:         2,
			demand:         1,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  4,
			wantStatus:     StatusUnsupported,
		},
		{
			name:           "raw parity is still net supply when factor scales it",
			supply:         4,
			demand:         4,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  8,
			wantStatus:     StatusNetSupply,
		},
		{
			name:           "net demand",
			supply:         2,
			demand:         9,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  4,
			wantStatus:     StatusNetDemand,
		},
		{
			name:           "balanced when effective supply equals demand",
			supply:         3,
			demand:         6,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  6,
			wantStatus:     StatusBalanced,
		},
		{
			name:           "exactly at threshold is classified",
			supply:         5,
			demand:         0,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  10,
			wantStatus:     StatusNetSupply,
		},
		{
			name:           "one below threshold is unsupported",
			supply:         4,
			demand:         0,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  8,
			wantStatus:     StatusUnsupported,
		},
		{
			name:           "unit capacity factor keeps raw parity balanced",
			supply:         4,
			demand:         4,
			capacityFactor: 1.0,
			minActivity:    5,
			wantEffective:  4,
			wantStatus:     StatusBalanced,
		},
		{
			name:           "fractional factor rounds half up",
			supply:         3,
			demand:         4,
			capacityFactor: 1.5,
			minActivity:    5,
			wantEffective:  5, // round(4.5) = 5
			wantStatus:     StatusNetSupply,
		},
		{
			name:           "demand-only cell",
			supply:         0,
			demand:         12,
			capacityFactor: 2.0,
			minActivity:    5,
			wantEffective:  0,
			wantStatus:     StatusNetDemand,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effective, status := classify(tt.supply, tt.demand, tt.capacityFactor, tt.minActivity)
			assert.Equal(t, tt.wantEffective, effective)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestClassifyExhaustive(t *testing.T) {
	// Every active combination above threshold maps to exactly one of
	// net_supply/net_demand/balanced, matching the sign of the net.
	for supply := 0; supply <= 12; supply++ {
		for demand := 0; demand <= 12; demand++ {
			if supply+demand < 5 {
				continue
			}
			effective, status := classify(supply, demand, 2.0, 5)
			net := effective - demand
			switch {
			case net > 0:
				assert.Equal(t, StatusNetSupply, status, "supply=%d demand=%d", supply, demand)
			case net < 0:
				assert.Equal(t, StatusNetDemand, status, "supply=%d demand=%d", supply, demand)
			default:
				assert.Equal(t, StatusBalanced, status, "supply=%d demand=%d", supply, demand)
			}
		}
	}
}
