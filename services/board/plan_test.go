package board

import (
	"errors"
	"testing"

	"dualdisplay-go/errcode"
)

func TestSelectedPlanIsValid(t *testing.T) {
	if err := Selected.Validate(); err != nil {
		t.Fatalf("selected plan invalid: %v", err)
	}
	if Selected.Displays[0].Addr != 0x3D || Selected.Displays[1].Addr != 0x3C {
		t.Fatalf("unexpected addresses: %#x %#x", Selected.Displays[0].Addr, Selected.Displays[1].Addr)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(p *Plan){
		"zero hz":         func(p *Plan) { p.Bus.Hz = 0 },
		"shared pin":      func(p *Plan) { p.Bus.SCL = p.Bus.SDA },
		"8-bit address":   func(p *Plan) { p.Displays[0].Addr = 0x80 },
		"same address":    func(p *Plan) { p.Displays[1].Addr = p.Displays[0].Addr },
		"odd height":      func(p *Plan) { p.Displays[1].Height = 60 },
		"no retries":      func(p *Plan) { p.RetryBudget = 0 },
		"zero magic":      func(p *Plan) { p.Boot.Magic = 0 },
		"no watch window": func(p *Plan) { p.Boot.WindowMs = 0 },
	}
	for name, mut := range cases {
		p := Selected
		mut(&p)
		err := p.Validate()
		if !errors.Is(err, errcode.InvalidPlan) {
			t.Fatalf("%s: want invalid_plan, got %v", name, err)
		}
	}
}
