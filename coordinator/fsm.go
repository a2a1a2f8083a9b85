package coordinator

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/lidofinance/frostsig/common"
)

const (
	StateIdle                  = "idle"
	StateCollectingCommitments = "collecting_commitments"
	StateBuildingPackage       = "building_package"
	StateCollectingShares      = "collecting_shares"
	StateAggregating           = "aggregating"
	StateDone                  = "done"
	StateFailed                = "failed"

	eventStart                = "start"
	eventCommitmentsCollected = "commitments_collected"
	eventPackageBuilt         = "package_built"
	eventSharesCollected      = "shares_collected"
	eventAggregated           = "aggregated"
	eventFail                 = "fail"
)

func newRunFSM(logger common.Logger) *fsm.FSM {
	return fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle}, Dst: StateCollectingCommitments},
			{Name: eventCommitmentsCollected, Src: []string{StateCollectingCommitments}, Dst: StateBuildingPackage},
			{Name: eventPackageBuilt, Src: []string{StateBuildingPackage}, Dst: StateCollectingShares},
			{Name: eventSharesCollected, Src: []string{StateCollectingShares}, Dst: StateAggregating},
			{Name: eventAggregated, Src: []string{StateAggregating}, Dst: StateDone},
			{
				Name: eventFail,
				Src: []string{
					StateIdle,
					StateCollectingCommitments,
					StateBuildingPackage,
					StateCollectingShares,
					StateAggregating,
				},
				Dst: StateFailed,
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Log("%s -> %s", e.Src, e.Dst)
			},
		},
	)
}
