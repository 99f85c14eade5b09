package util

import "errors"

var (
	ErrUserNotFound    = errors.New("用户不存在")
	ErrEmailRegistered = errors.New("该邮箱已被注册")

	// 配置类错误：参考数据损坏，属于致命错误，不自动重试
	ErrNoQuestionsAtLevel = errors.New("no questions configured at level")
	ErrUnknownLevel       = errors.New("unknown level in threshold table")
	ErrNoQualifyingRank   = errors.New("no rank threshold qualifies for rating")

	// 校验类错误：立即拒绝，不做静默兜底
	ErrInvalidWorkingLevel = errors.New("working level must be between 1 and 10")
	ErrInvalidFinalLevel   = errors.New("final level must be between 1 and 10")
	ErrMissingAnswer       = errors.New("answer must carry isCorrect or submittedAnswer")

	// 诊断完成标记已置位后不允许重测，避免覆盖已定级的评分
	ErrDiagnosticAlreadyDone = errors.New("diagnostic already completed")

	// 可重试的存储错误：诊断完成标记必须落库，否则学员可重复测试
	ErrDiagnosticPersist = errors.New("failed to persist diagnostic completion, please retry")
)
