package service

import (
	"math/rand"

	"skill_quest_backend/internal/model"
	"skill_quest_backend/internal/util"
	"skill_quest_backend/pkg/logger"
	"skill_quest_backend/pkg/monitoring"

	"go.uber.org/zap"
)

const (
	MinWorkingLevel = 1
	MaxWorkingLevel = 10

	// 诊断测试固定 15 题
	DiagnosticQuestionCount = 15

	// 连续 3 次触发天花板/地板提前结束
	earlyExitStreak = 3
)

type TerminationReason string

const (
	TerminationNone      TerminationReason = ""
	TerminationCompleted TerminationReason = "completed_all_questions"
	TerminationMastery   TerminationReason = "level_10_mastery"
	TerminationFailure   TerminationReason = "level_1_failure"
	TerminationBounce    TerminationReason = "bounce_detection"
)

// DiagnosticSession 测试中的临时状态，由客户端逐题回传，不落库
type DiagnosticSession struct {
	WorkingLevel       int   `json:"workingLevel"`
	QuestionIndex      int   `json:"questionIndex"`
	FloorWrongStreak   int   `json:"floorWrongStreak"`
	CeilingRightStreak int   `json:"ceilingRightStreak"`
	LevelHistory       []int `json:"levelHistory"`
}

func NewDiagnosticSession(seedLevel int) DiagnosticSession {
	if seedLevel < MinWorkingLevel || seedLevel > MaxWorkingLevel {
		seedLevel = MinWorkingLevel
	}
	return DiagnosticSession{
		WorkingLevel:  seedLevel,
		QuestionIndex: 1,
		LevelHistory:  []int{seedLevel},
	}
}

// Advance 单步转移：根据答题对错调整工作等级并判定是否结束。
// 纯函数，不修改入参；reason 为空字符串表示测试继续。
func Advance(s DiagnosticSession, correct bool) (DiagnosticSession, TerminationReason) {
	next := s
	next.LevelHistory = make([]int, len(s.LevelHistory), len(s.LevelHistory)+1)
	copy(next.LevelHistory, s.LevelHistory)

	if correct {
		if next.WorkingLevel < MaxWorkingLevel {
			next.WorkingLevel++
		}
	} else {
		if next.WorkingLevel > MinWorkingLevel {
			next.WorkingLevel--
		}
	}
	next.LevelHistory = append(next.LevelHistory, next.WorkingLevel)

	if next.WorkingLevel == MinWorkingLevel && !correct {
		next.FloorWrongStreak++
	} else {
		next.FloorWrongStreak = 0
	}
	if next.WorkingLevel == MaxWorkingLevel && correct {
		next.CeilingRightStreak++
	} else {
		next.CeilingRightStreak = 0
	}

	// 结束条件按优先级判定
	switch {
	case next.QuestionIndex >= DiagnosticQuestionCount:
		return next, TerminationCompleted
	case next.CeilingRightStreak >= earlyExitStreak:
		return next, TerminationMastery
	case next.FloorWrongStreak >= earlyExitStreak:
		return next, TerminationFailure
	case isBouncing(next.LevelHistory):
		return next, TerminationBounce
	}

	next.QuestionIndex++
	return next, TerminationNone
}

// isBouncing 最近4次等级呈 a,b,a,b 交替且无净进展，说明已收敛
func isBouncing(history []int) bool {
	n := len(history)
	if n < 4 {
		return false
	}
	a, b, c, d := history[n-4], history[n-3], history[n-2], history[n-1]
	return a == c && b == d && a != b
}

// QuestionSource 题库协作方
type QuestionSource interface {
	FindByLevel(level int) ([]model.Question, error)
	FindByID(id uint) (*model.Question, error)
}

type DiagnosticService struct {
	Questions QuestionSource
}

func NewDiagnosticService(questions QuestionSource) *DiagnosticService {
	return &DiagnosticService{Questions: questions}
}

type DiagnosticStartResponse struct {
	SessionID string            `json:"sessionId"`
	Session   DiagnosticSession `json:"session"`
	Question  *model.Question   `json:"question"`
}

type DiagnosticAnswerRequest struct {
	QuestionID      uint    `json:"questionId"`
	IsCorrect       *bool   `json:"isCorrect"`
	SubmittedAnswer *string `json:"submittedAnswer"`

	WorkingLevel       int   `json:"workingLevel" binding:"required"`
	QuestionIndex      int   `json:"questionIndex" binding:"required"`
	FloorWrongStreak   int   `json:"floorWrongStreak"`
	CeilingRightStreak int   `json:"ceilingRightStreak"`
	LevelHistory       []int `json:"levelHistory"`
}

type DiagnosticAnswerResponse struct {
	Session           DiagnosticSession `json:"session"`
	NextQuestion      *model.Question   `json:"nextQuestion,omitempty"`
	TerminationReason TerminationReason `json:"terminationReason,omitempty"`
	FinalLevel        int               `json:"finalLevel,omitempty"`
}

// StartDiagnostic 开始诊断测试，seedLevel 越界时回落到 1
func (s *DiagnosticService) StartDiagnostic(seedLevel int) (*DiagnosticStartResponse, error) {
	session := NewDiagnosticSession(seedLevel)

	question, err := s.nextQuestionAt(session.WorkingLevel)
	if err != nil {
		return nil, err
	}

	return &DiagnosticStartResponse{
		SessionID: model.GenerateUUID(),
		Session:   session,
		Question:  question,
	}, nil
}

// SubmitAnswer 提交一题答案，返回下一题或结束原因
func (s *DiagnosticService) SubmitAnswer(req DiagnosticAnswerRequest) (*DiagnosticAnswerResponse, error) {
	if req.WorkingLevel < MinWorkingLevel || req.WorkingLevel > MaxWorkingLevel {
		return nil, util.ErrInvalidWorkingLevel
	}

	correct, err := s.resolveCorrectness(req)
	if err != nil {
		return nil, err
	}

	session := DiagnosticSession{
		WorkingLevel:       req.WorkingLevel,
		QuestionIndex:      req.QuestionIndex,
		FloorWrongStreak:   req.FloorWrongStreak,
		CeilingRightStreak: req.CeilingRightStreak,
		LevelHistory:       req.LevelHistory,
	}
	if len(session.LevelHistory) == 0 {
		session.LevelHistory = []int{session.WorkingLevel}
	}

	next, reason := Advance(session, correct)

	if reason != TerminationNone {
		monitoring.DiagnosticTerminations.WithLabelValues(string(reason)).Inc()
		logger.Log.Info("diagnostic terminated",
			zap.String("reason", string(reason)),
			zap.Int("finalLevel", next.WorkingLevel),
			zap.Int("questionIndex", next.QuestionIndex))
		return &DiagnosticAnswerResponse{
			Session:           next,
			TerminationReason: reason,
			FinalLevel:        next.WorkingLevel,
		}, nil
	}

	question, err := s.nextQuestionAt(next.WorkingLevel)
	if err != nil {
		return nil, err
	}

	return &DiagnosticAnswerResponse{
		Session:      next,
		NextQuestion: question,
	}, nil
}

func (s *DiagnosticService) resolveCorrectness(req DiagnosticAnswerRequest) (bool, error) {
	if req.IsCorrect != nil {
		return *req.IsCorrect, nil
	}
	if req.SubmittedAnswer == nil {
		// 两个判定字段都缺失时拒绝请求，缺答案不等于答错
		return false, util.ErrMissingAnswer
	}
	question, err := s.Questions.FindByID(req.QuestionID)
	if err != nil {
		return false, err
	}
	return question.Answer == *req.SubmittedAnswer, nil
}

// nextQuestionAt 在目标等级题目中均匀随机选一题；该等级无题属于配置错误，直接上抛
func (s *DiagnosticService) nextQuestionAt(level int) (*model.Question, error) {
	questions, err := s.Questions.FindByLevel(level)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		logger.Log.Error("no questions configured at level", zap.Int("level", level))
		return nil, util.ErrNoQuestionsAtLevel
	}
	q := questions[rand.Intn(len(questions))]
	return &q, nil
}
