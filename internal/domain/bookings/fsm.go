package bookings

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
)

var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusConfirmed: {},
		StatusRejected:  {},
		StatusCancelled: {},
	},
	StatusConfirmed: {
		StatusInProgress: {},
		StatusRejected:   {},
		StatusCancelled:  {},
	},
	StatusInProgress: {StatusCompleted: {}},
	StatusCompleted:  {},
	StatusRejected:   {},
	StatusCancelled:  {},
}

// CanTransition indica si from -> to es una arista permitida. Quedarse en el
// mismo estado no es una transición.
func CanTransition(from, to Status) bool {
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pendiente"
	case StatusConfirmed:
		return "Confirmada"
	case StatusInProgress:
		return "En curso"
	case StatusCompleted:
		return "Completada"
	case StatusRejected:
		return "Rechazada"
	case StatusCancelled:
		return "Cancelada"
	default:
		return string(s)
	}
}

// Action es un cambio de estado pedido por una de las partes.
type Action string

const (
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

var actionTarget = map[Action]Status{
	ActionConfirm:  StatusConfirmed,
	ActionReject:   StatusRejected,
	ActionStart:    StatusInProgress,
	ActionComplete: StatusCompleted,
	ActionCancel:   StatusCancelled,
}

var actionParties = map[Action][]Party{
	ActionConfirm:  {PartyProvider},
	ActionReject:   {PartyProvider},
	ActionStart:    {PartyProvider},
	ActionComplete: {PartyProvider},
	ActionCancel:   {PartyOwner, PartyProvider},
}

var actionOrder = []Action{ActionConfirm, ActionStart, ActionComplete, ActionReject, ActionCancel}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actionTarget[a]
	return a, ok
}

func (a Action) Target() Status { return actionTarget[a] }

func (a Action) AllowedFor(p Party) bool {
	for _, allowed := range actionParties[a] {
		if allowed == p {
			return true
		}
	}
	return false
}

// ActionsFor lista las acciones que la parte puede ejecutar desde status.
func ActionsFor(status Status, p Party) []Action {
	var out []Action
	for _, a := range actionOrder {
		if a.AllowedFor(p) && CanTransition(status, a.Target()) {
			out = append(out, a)
		}
	}
	return out
}

// AvailableActions deriva la parte del usuario desde la reserva.
func AvailableActions(b Booking, userID int64) []Action {
	p, err := PartyOf(b, userID)
	if err != nil {
		return nil
	}
	return ActionsFor(b.Status, p)
}

// CheckAction valida parte + FSM y devuelve el estado destino.
func CheckAction(b Booking, userID int64, a Action) (Status, error) {
	to, ok := actionTarget[a]
	if !ok {
		return "", ErrInvalidInput
	}
	p, err := PartyOf(b, userID)
	if err != nil {
		return "", err
	}
	if !a.AllowedFor(p) {
		return "", ErrNotAllowed
	}
	if !CanTransition(b.Status, to) {
		return "", ErrInvalidTransition
	}
	return to, nil
}
