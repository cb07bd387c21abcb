package apperrors

import (
	"errors"
	"fmt"
)

// 错误码
const (
	// 配置错误：在对局开始前即失败
	ErrCodeTooFewPlayers = 1001
	ErrCodeNoRows        = 1002
	ErrCodeDeckTooSmall  = 1003
	ErrCodeBadThreshold  = 1004
	ErrCodeBadHandSize   = 1005
	ErrCodeUnknownAgent  = 1006
	ErrCodeNoGames       = 1007
	ErrCodeBadConfig     = 1008

	// 智能体违约：仅影响当前对局
	ErrCodeCardNotInHand = 2001
	ErrCodeAgentFailed   = 2002
)

// GameError 游戏错误
type GameError struct {
	Code    int
	Message string
	Err     error
}

func (e *GameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较，使 errors.Is 对带有上下文的副本同样成立
func (e *GameError) Is(target error) bool {
	var t *GameError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// 预定义错误
var (
	ErrTooFewPlayers = &GameError{Code: ErrCodeTooFewPlayers, Message: "at least two players are required"}
	ErrNoRows        = &GameError{Code: ErrCodeNoRows, Message: "the table needs at least one row"}
	ErrDeckTooSmall  = &GameError{Code: ErrCodeDeckTooSmall, Message: "deck too small for players, hands and rows"}
	ErrBadThreshold  = &GameError{Code: ErrCodeBadThreshold, Message: "xth card takes must be at least 1"}
	ErrBadHandSize   = &GameError{Code: ErrCodeBadHandSize, Message: "hand size must be at least 1"}
	ErrUnknownAgent  = &GameError{Code: ErrCodeUnknownAgent, Message: "unknown agent"}
	ErrNoGames       = &GameError{Code: ErrCodeNoGames, Message: "a match needs at least one game"}
	ErrBadConfig     = &GameError{Code: ErrCodeBadConfig, Message: "invalid configuration"}
	ErrCardNotInHand = &GameError{Code: ErrCodeCardNotInHand, Message: "agent returned a card that is not in its hand"}
	ErrAgentFailed   = &GameError{Code: ErrCodeAgentFailed, Message: "agent failed to choose a card"}
)

// Wrap 基于预定义错误生成带上下文的新错误
func Wrap(base *GameError, err error, format string, args ...any) *GameError {
	msg := base.Message
	if format != "" {
		msg = fmt.Sprintf("%s: %s", fmt.Sprintf(format, args...), base.Message)
	}
	return &GameError{Code: base.Code, Message: msg, Err: err}
}

// IsConfigError 判断是否为配置错误
func IsConfigError(err error) bool {
	var ge *GameError
	return errors.As(err, &ge) && ge.Code >= 1000 && ge.Code < 2000
}

// IsContractViolation 判断是否为智能体违约
func IsContractViolation(err error) bool {
	var ge *GameError
	return errors.As(err, &ge) && ge.Code >= 2000 && ge.Code < 3000
}
