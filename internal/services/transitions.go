package services

import (
	"github.com/baharkarakas/booking-ledger/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type party int

const (
	partyRequester party = iota
	partyWorker
)

func (p party) role() models.Role {
	if p == partyWorker {
		return models.RoleWorker
	}
	return models.RoleRequester
}

func (p party) of(b models.Booking) uuid.UUID {
	if p == partyWorker {
		return b.WorkerID
	}
	return b.RequesterID
}

type amountKind int

const (
	amountTotal amountKind = iota
	amountEarning
)

func (k amountKind) of(b models.Booking) decimal.Decimal {
	if k == amountEarning {
		return b.WorkerEarning
	}
	return b.TotalPrice
}

// Effect is one ledger posting required by a transition.
type Effect struct {
	Party     party
	Bucket    models.Bucket
	Direction models.Direction
	Amount    amountKind
	Reason    string
}

// Rule is the full consequence of moving a booking from one status to
// another.
type Rule struct {
	From    models.BookingStatus
	To      models.BookingStatus
	Effects []Effect

	// WorkerAvailable, when set, is written to the worker account.
	WorkerAvailable *bool
	StartClock      bool
	StopClock       bool
}

type transitionKey struct{ from, to models.BookingStatus }

var (
	available   = true
	unavailable = false
)

var requesterRefund = Effect{partyRequester, models.BucketBalance, models.Credit, amountTotal, models.ReasonBookingRefund}

var transitionTable = map[transitionKey]Rule{
	{models.StatusPending, models.StatusAccepted}: {
		Effects: []Effect{
			{partyWorker, models.BucketEscrow, models.Credit, amountEarning, models.ReasonEscrowHold},
		},
	},
	{models.StatusPending, models.StatusRejected}: {
		Effects: []Effect{requesterRefund},
	},
	{models.StatusPending, models.StatusCancelled}: {
		Effects: []Effect{requesterRefund},
	},
	{models.StatusAccepted, models.StatusCancelled}: {
		Effects: []Effect{
			requesterRefund,
			{partyWorker, models.BucketEscrow, models.Debit, amountEarning, models.ReasonEscrowReversal},
		},
		WorkerAvailable: &available,
	},
	{models.StatusAccepted, models.StatusOnTheWay}: {
		WorkerAvailable: &unavailable,
	},
	{models.StatusAccepted, models.StatusInProgress}: {
		WorkerAvailable: &unavailable,
		StartClock:      true,
	},
	{models.StatusOnTheWay, models.StatusInProgress}: {
		WorkerAvailable: &unavailable,
		StartClock:      true,
	},
	{models.StatusInProgress, models.StatusCompleted}: {
		Effects: []Effect{
			{partyWorker, models.BucketEscrow, models.Debit, amountEarning, models.ReasonEscrowRelease},
			{partyWorker, models.BucketBalance, models.Credit, amountEarning, models.ReasonEarningRealized},
		},
		WorkerAvailable: &available,
		StopClock:       true,
	},
}

// LookupTransition returns the rule for from -> to or an
// InvalidTransitionError. It never consults anything but the table.
func LookupTransition(from, to models.BookingStatus) (Rule, error) {
	r, ok := transitionTable[transitionKey{from, to}]
	if !ok {
		return Rule{}, &models.InvalidTransitionError{From: from, To: to}
	}
	r.From, r.To = from, to
	return r, nil
}

// AllowedTargets lists the statuses reachable from from, in declaration order.
func AllowedTargets(from models.BookingStatus) []models.BookingStatus {
	if from.Terminal() {
		return nil
	}
	var out []models.BookingStatus
	for _, to := range models.AllStatuses {
		if _, ok := transitionTable[transitionKey{from, to}]; ok {
			out = append(out, to)
		}
	}
	return out
}

var roleTargets = map[models.Role]map[models.BookingStatus]bool{
	models.RoleRequester: {
		models.StatusCancelled: true,
	},
	models.RoleWorker: {
		models.StatusAccepted:   true,
		models.StatusRejected:   true,
		models.StatusOnTheWay:   true,
		models.StatusInProgress: true,
		models.StatusCompleted:  true,
	},
}

// authorizeTransition checks that actor may ask for to on b: the role must
// allow the target and the actor must be the booking's party for that role.
func authorizeTransition(actor models.Actor, b models.Booking, to models.BookingStatus) error {
	deny := &models.UnauthorizedTransitionError{ActorID: actor.ID, Role: actor.Role, To: to}
	if !roleTargets[actor.Role][to] {
		return deny
	}
	switch actor.Role {
	case models.RoleRequester:
		if actor.ID != b.RequesterID {
			return deny
		}
	case models.RoleWorker:
		if actor.ID != b.WorkerID {
			return deny
		}
	default:
		return deny
	}
	return nil
}

// parties returns the accounts a rule touches.
func (r Rule) parties() []party {
	seen := map[party]bool{}
	var out []party
	for _, e := range r.Effects {
		if !seen[e.Party] {
			seen[e.Party] = true
			out = append(out, e.Party)
		}
	}
	if r.WorkerAvailable != nil && !seen[partyWorker] {
		out = append(out, partyWorker)
	}
	return out
}
