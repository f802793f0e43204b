package service

import (
	"fmt"
	"strings"

	"onboarder/internal/domain"
	"onboarder/internal/platform"
)

// Message keys of the onboarding conversation
const (
	KeyWelcome           = "welcome"
	KeyLanguageSet       = "language-set"
	KeyWelcomeCoc        = "welcome-coc"
	KeyCocAccepted       = "coc-accepted"
	KeyCocDeclined       = "coc-declined"
	KeyOrderFoundConfirm = "order-found-confirm"
	KeyAskProgram        = "ask-master-program"
	KeyRolesAssigned     = "roles-assigned"
)

// MessageKeys lists every text the workflow sends
var MessageKeys = []string{
	KeyWelcome,
	KeyLanguageSet,
	KeyWelcomeCoc,
	KeyCocAccepted,
	KeyCocDeclined,
	KeyOrderFoundConfirm,
	KeyAskProgram,
	KeyRolesAssigned,
}

var languageBySymbol = map[domain.Symbol]domain.Language{
	domain.SymbolFlagDE: domain.LanguageGerman,
	domain.SymbolFlagUS: domain.LanguageEnglish,
}

var welcomeAttachments = map[domain.Language][]platform.Attachment{
	domain.LanguageGerman: {
		{Path: "welcome_de.pdf", Filename: "Willkommen.pdf"},
		{Path: "coc_de.pdf", Filename: "Code_of_Conduct.pdf"},
	},
	domain.LanguageEnglish: {
		{Path: "welcome_en.pdf", Filename: "Welcome.pdf"},
		{Path: "coc_en.pdf", Filename: "Code_of_Conduct.pdf"},
	},
}

type dispatchKey struct {
	state  domain.State
	kind   domain.EventKind
	symbol domain.Symbol
}

type step func(record domain.UserRecord, ev domain.Event, order *domain.Order) (Decision, error)

// Workflow is the onboarding state machine. Decide is pure: it reads nothing and
// writes nothing, all I/O happens in the Executor.
type Workflow struct {
	roles *RoleResolver
	table map[dispatchKey]step
}

// NewWorkflow creates the onboarding state machine
func NewWorkflow(roles *RoleResolver) *Workflow {
	w := &Workflow{roles: roles}
	w.table = map[dispatchKey]step{
		{domain.StateNew, domain.EventMemberJoined, domain.SymbolUnknown}:               w.welcome,
		{domain.StateLanguageRequested, domain.EventReactionAdded, domain.SymbolFlagDE}: w.chooseLanguage,
		{domain.StateLanguageRequested, domain.EventReactionAdded, domain.SymbolFlagUS}: w.chooseLanguage,
		{domain.StateCocRequested, domain.EventReactionAdded, domain.SymbolYes}:         w.acceptCoc,
		{domain.StateCocRequested, domain.EventReactionAdded, domain.SymbolNo}:          w.declineCoc,
		{domain.StateOrderConfirm, domain.EventReactionAdded, domain.SymbolYes}:         w.confirmOrder,
		{domain.StateOrderConfirm, domain.EventReactionAdded, domain.SymbolNo}:          w.rejectOrder,
	}
	for _, digit := range domain.DigitSymbols {
		w.table[dispatchKey{domain.StateProgramSelection, domain.EventReactionAdded, digit}] = w.selectProgram
		w.table[dispatchKey{domain.StateProgramSelection, domain.EventReactionRemoved, digit}] = w.deselectProgram
	}
	return w
}

// NeedsRegistration reports whether Decide needs the user's registration for ev
func (w *Workflow) NeedsRegistration(record domain.UserRecord, ev domain.Event) bool {
	if ev.Kind != domain.EventReactionAdded || ev.Symbol != domain.SymbolYes {
		return false
	}
	return record.State == domain.StateCocRequested || record.State == domain.StateOrderConfirm
}

// Decide computes the next record and the effects for ev.
// order is the user's registration when NeedsRegistration asked for it, nil when absent.
// Events without a table entry and events for finished or declined users yield a no-op decision.
func (w *Workflow) Decide(record domain.UserRecord, ev domain.Event, order *domain.Order) (Decision, error) {
	if record.State.Terminal() {
		return Decision{Next: record}, nil
	}

	key := dispatchKey{state: record.State, kind: ev.Kind}
	if ev.IsReaction() {
		key.symbol = ev.Symbol
	}

	s, ok := w.table[key]
	if !ok {
		return Decision{Next: record}, nil
	}
	return s(record, ev, order)
}

func (w *Workflow) welcome(record domain.UserRecord, _ domain.Event, _ *domain.Order) (Decision, error) {
	next, err := transition(record, TransitionRequestLanguage)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Next: next,
		Effects: []Effect{
			SendMessage{
				Key:       KeyWelcome,
				Reactions: []domain.Symbol{domain.SymbolFlagDE, domain.SymbolFlagUS},
				Prompt:    true,
			},
			Persist{},
			Audit{Message: "Joined."},
		},
	}, nil
}

func (w *Workflow) chooseLanguage(record domain.UserRecord, ev domain.Event, _ *domain.Order) (Decision, error) {
	next, err := transition(record, TransitionRequestCoc)
	if err != nil {
		return Decision{}, err
	}
	lang := languageBySymbol[ev.Symbol]
	next.Language = lang

	return Decision{
		Next: next,
		Effects: []Effect{
			SendMessage{Key: KeyLanguageSet},
			SendMessage{
				Key:         KeyWelcomeCoc,
				Attachments: welcomeAttachments[lang],
				Reactions:   []domain.Symbol{domain.SymbolYes, domain.SymbolNo},
				Prompt:      true,
			},
			Persist{},
			Audit{Message: fmt.Sprintf("Language set to %s.", lang)},
		},
	}, nil
}

func (w *Workflow) acceptCoc(record domain.UserRecord, _ domain.Event, order *domain.Order) (Decision, error) {
	if order == nil {
		next, err := transition(record, TransitionSelectPrograms)
		if err != nil {
			return Decision{}, err
		}
		return Decision{
			Next: next,
			Effects: []Effect{
				SendMessage{Key: KeyCocAccepted},
				programPrompt(),
				Persist{},
				Audit{Message: "Accepted code of conduct, no registration found."},
			},
		}, nil
	}

	next, err := transition(record, TransitionConfirmOrder)
	if err != nil {
		return Decision{}, err
	}
	return Decision{
		Next: next,
		Effects: []Effect{
			SendMessage{Key: KeyCocAccepted},
			SendMessage{
				Key:       KeyOrderFoundConfirm,
				Args:      []any{string(order.Product), joinPrograms(order.Programs)},
				Reactions: []domain.Symbol{domain.SymbolYes, domain.SymbolNo},
				Prompt:    true,
			},
			Persist{},
			Audit{Message: fmt.Sprintf("Accepted code of conduct, found registration for %s.", order.Product)},
		},
	}, nil
}

func (w *Workflow) declineCoc(record domain.UserRecord, _ domain.Event, _ *domain.Order) (Decision, error) {
	next, err := transition(record, TransitionDecline)
	if err != nil {
		return Decision{}, err
	}
	next.LastPromptID = ""

	return Decision{
		Next: next,
		Effects: []Effect{
			SendMessage{Key: KeyCocDeclined},
			FlagUser{},
			Persist{},
			Audit{Message: "DECLINED CODE OF CONDUCT! Enabling message log."},
			AlertOperators{Message: fmt.Sprintf("%s declined the code of conduct, their messages are now logged.", record.Username)},
		},
	}, nil
}

func (w *Workflow) confirmOrder(record domain.UserRecord, ev domain.Event, order *domain.Order) (Decision, error) {
	if order == nil {
		// the registration disappeared between prompt and answer
		return w.rejectOrder(record, ev, nil)
	}

	if order.GraduateTrack() {
		next, err := transition(record, TransitionSelectPrograms)
		if err != nil {
			return Decision{}, err
		}
		roles := w.roles.Resolve(order.Product, order.Programs, false)
		return Decision{
			Next: next,
			Effects: []Effect{
				GrantRoles{Roles: roles},
				programPrompt(),
				Persist{},
				Audit{Message: assignedMessage(order.Product, order.Programs, false)},
			},
		}, nil
	}

	next, err := transition(record, TransitionFinish)
	if err != nil {
		return Decision{}, err
	}
	next.LastPromptID = ""

	var effects []Effect
	if roles := w.roles.Resolve(order.Product, nil, false); len(roles) > 0 {
		effects = append(effects, GrantRoles{Roles: roles})
	}
	effects = append(effects,
		SendMessage{Key: KeyRolesAssigned},
		Persist{},
		Audit{Message: assignedMessage(order.Product, nil, false)},
		Audit{Message: "Finished."},
	)

	return Decision{Next: next, Effects: effects}, nil
}

func (w *Workflow) rejectOrder(record domain.UserRecord, _ domain.Event, _ *domain.Order) (Decision, error) {
	next, err := transition(record, TransitionSelectPrograms)
	if err != nil {
		return Decision{}, err
	}

	return Decision{
		Next: next,
		Effects: []Effect{
			programPrompt(),
			Persist{},
			Audit{Message: "Registration not confirmed, asking for program."},
		},
	}, nil
}

func (w *Workflow) selectProgram(record domain.UserRecord, ev domain.Event, _ *domain.Order) (Decision, error) {
	program, role, ok := w.programForSymbol(ev.Symbol)
	if !ok {
		return Decision{Next: record}, nil
	}

	return Decision{
		Next: record,
		Effects: []Effect{
			GrantRoles{Roles: []domain.RoleID{role}},
			Audit{Message: fmt.Sprintf("Selected program %s.", program)},
		},
	}, nil
}

func (w *Workflow) deselectProgram(record domain.UserRecord, ev domain.Event, _ *domain.Order) (Decision, error) {
	program, role, ok := w.programForSymbol(ev.Symbol)
	if !ok {
		return Decision{Next: record}, nil
	}

	return Decision{
		Next: record,
		Effects: []Effect{
			RevokeRoles{Roles: []domain.RoleID{role}},
			Audit{Message: fmt.Sprintf("Deselected program %s.", program)},
		},
	}, nil
}

func (w *Workflow) programForSymbol(s domain.Symbol) (domain.Program, domain.RoleID, bool) {
	digit, ok := s.Digit()
	if !ok || digit > len(domain.Programs) {
		return "", "", false
	}
	program := domain.Programs[digit-1]
	role, ok := w.roles.ProgramRole(program)
	return program, role, ok
}

func transition(record domain.UserRecord, name string) (domain.UserRecord, error) {
	state, err := advance(record.State, name)
	if err != nil {
		return domain.UserRecord{}, err
	}
	record.State = state
	return record, nil
}

func programPrompt() SendMessage {
	return SendMessage{
		Key:       KeyAskProgram,
		Reactions: append([]domain.Symbol(nil), domain.DigitSymbols...),
		Prompt:    true,
	}
}

func joinPrograms(programs []domain.Program) string {
	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func assignedMessage(product domain.Product, programs []domain.Program, programmingCourse bool) string {
	return fmt.Sprintf("Assigned roles according to product %s, programs [%s] and pc %t.",
		product, joinPrograms(programs), programmingCourse)
}
