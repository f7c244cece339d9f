package ledger

import (
	"fmt"
	"time"

	"FundDesk/internal/model"
	"FundDesk/internal/money"
)

// Code is a machine-readable rule violation code.
type Code string

const (
	CodeRetroactiveDate     Code = "RETROACTIVE_DATE"
	CodeInsufficientResults Code = "INSUFFICIENT_RESULTS"
	CodeInsufficientCapital Code = "INSUFFICIENT_CAPITAL"
	CodeLockupPeriod        Code = "LOCKUP_PERIOD"
	CodeNoResults           Code = "NO_RESULTS"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeAmountTooLarge      Code = "AMOUNT_TOO_LARGE"
	CodeInvalidPercentage   Code = "INVALID_PERCENTAGE"
	CodeInvalidPool         Code = "INVALID_REDEMPTION_TYPE"
	CodeTransactionNotFound Code = "TRANSACTION_NOT_FOUND"
	CodeNotPending          Code = "NOT_PENDING"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
)

// RuleError is a business rule violation. Message is meant to be shown to the
// user as is.
type RuleError struct {
	Code    Code
	Message string
}

func (e *RuleError) Error() string { return e.Message }

var (
	ErrRetroactiveDate     = &RuleError{CodeRetroactiveDate, "Não é possível agendar resgate com data retroativa."}
	ErrInsufficientResults = &RuleError{CodeInsufficientResults, "Saldo de rendimentos insuficiente."}
	ErrInsufficientCapital = &RuleError{CodeInsufficientCapital, "Saldo de capital insuficiente."}
	ErrLockupPeriod        = &RuleError{CodeLockupPeriod, "Capital ainda em período de carência."}
	ErrNoResults           = &RuleError{CodeNoResults, "Você não possui saldo de performance para reinvestir."}
	ErrInvalidAmount       = &RuleError{CodeInvalidAmount, "O valor informado deve ser maior que zero."}
	ErrAmountTooLarge      = &RuleError{CodeAmountTooLarge, "O valor excede o limite operacional do fundo."}
	ErrInvalidPercentage   = &RuleError{CodeInvalidPercentage, "Percentual fora do intervalo permitido."}
	ErrInvalidPool         = &RuleError{CodeInvalidPool, "Tipo de resgate inválido."}
	ErrTransactionNotFound = &RuleError{CodeTransactionNotFound, "Transação não encontrada."}
	ErrNotPending          = &RuleError{CodeNotPending, "A transação não está em análise."}
	ErrUserNotFound        = &RuleError{CodeUserNotFound, "Usuário não encontrado."}
)

// LockupError reports a capital redemption larger than the capital already
// out of its lockup period. errors.Is(err, ErrLockupPeriod) holds.
type LockupError struct {
	Requested money.Cents
	Liquid    money.Cents
	At        time.Time
}

func (e *LockupError) Error() string {
	return fmt.Sprintf("Valor bloqueado pelo período de carência. Capital disponível para resgate em %s: %s.",
		model.FormatDate(e.At), e.Liquid.Format())
}

func (e *LockupError) Unwrap() error { return ErrLockupPeriod }
