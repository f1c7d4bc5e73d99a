// Пакет workflow — правила переходов статусов заявки.
//
// Жизненный цикл:
//   - pending → approved (выдача наряда) | rejected
//   - approved → assigned (заявка на закупку) | rejected
//   - любой статус → rejected
//
// Проверка переходов необязательна: в нестрогом режиме Guard
// разрешает любой переход, как и базовый рабочий процесс.
package workflow

import (
	"fmt"

	"github.com/bigkaa/faultdesk/internal/domain/model"
)

// CodeInvalidTransition — машиночитаемый код ошибки перехода.
const CodeInvalidTransition = "INVALID_TRANSITION"

// validTransitions — матрица допустимых переходов в строгом режиме.
// Ключ — текущий статус, значение — набор допустимых целевых статусов.
var validTransitions = map[model.Status]map[model.Status]bool{
	model.StatusPending:  {model.StatusApproved: true, model.StatusRejected: true},
	model.StatusApproved: {model.StatusAssigned: true, model.StatusRejected: true},
	model.StatusAssigned: {model.StatusRejected: true},
	model.StatusRejected: {model.StatusRejected: true},
}

// Guard проверяет допустимость смены статуса.
type Guard struct {
	strict bool
}

// NewGuard создаёт проверку переходов. strict=false — разрешены любые переходы.
func NewGuard(strict bool) *Guard {
	return &Guard{strict: strict}
}

// Strict сообщает, включена ли проверка.
func (g *Guard) Strict() bool {
	return g.strict
}

// CanTransition проверяет допустимость перехода from → to.
func (g *Guard) CanTransition(from, to model.Status) bool {
	if !g.strict {
		return true
	}
	return validTransitions[from][to]
}

// Check возвращает *TransitionError, если переход недопустим.
func (g *Guard) Check(from, to model.Status) error {
	if g.CanTransition(from, to) {
		return nil
	}
	return &TransitionError{
		Code:    CodeInvalidTransition,
		From:    from,
		To:      to,
		Message: fmt.Sprintf("переход %s → %s недопустим", from, to),
	}
}

// AllowedTargets возвращает статусы, в которые можно перейти из from.
func (g *Guard) AllowedTargets(from model.Status) []model.Status {
	result := make([]model.Status, 0, len(model.Statuses))
	for _, to := range model.Statuses {
		if g.CanTransition(from, to) {
			result = append(result, to)
		}
	}
	return result
}

// TransitionError — ошибка перехода между статусами.
type TransitionError struct {
	Code    string
	From    model.Status
	To      model.Status
	Message string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
