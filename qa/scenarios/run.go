package scenarios

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gridwise/microdispatch/core/model"
	"github.com/gridwise/microdispatch/core/optimizer"
	"github.com/gridwise/microdispatch/core/solver"
	"github.com/gridwise/microdispatch/infra/logger"
	milp "github.com/gridwise/microdispatch/infra/solver"
)

func RunScenario(t *testing.T, sc *Scenario) {
	engine := optimizer.New(milp.New(logger.NopLogger{}), solver.DefaultOptions(), logger.NopLogger{}, nil)
	in := model.HorizonInput{LoadKW: sc.LoadKW, SolarKW: sc.SolarKW}

	res, err := engine.Optimize(context.Background(), in, sc.Assets.ToModel())
	if sc.Expected.Infeasible {
		var ierr *optimizer.InfeasibleModelError
		if !errors.As(err, &ierr) {
			t.Fatalf("scenario %s expected infeasibility, got result %+v err %v", sc.Name, res, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	tol := sc.Expected.Tolerance
	if tol == 0 {
		tol = 1e-4
	}
	if math.Abs(res.Summary.TotalCost-sc.Expected.TotalCost) > tol {
		t.Errorf("scenario %s expected total cost %v, got %v", sc.Name, sc.Expected.TotalCost, res.Summary.TotalCost)
	}
	if math.Abs(res.Summary.DieselEnergyKWh-sc.Expected.DieselEnergyKWh) > tol {
		t.Errorf("scenario %s expected diesel energy %v, got %v", sc.Name, sc.Expected.DieselEnergyKWh, res.Summary.DieselEnergyKWh)
	}
	if math.Abs(res.Summary.CurtailedKWh-sc.Expected.CurtailedKWh) > tol {
		t.Errorf("scenario %s expected curtailed %v, got %v", sc.Name, sc.Expected.CurtailedKWh, res.Summary.CurtailedKWh)
	}
}
