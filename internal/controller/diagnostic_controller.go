package controller

import (
	"errors"
	"strconv"

	"skill_quest_backend/internal/service"
	"skill_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DiagnosticController struct {
	DiagnosticService *service.DiagnosticService
	SessionService    *service.SessionService
}

func NewDiagnosticController(diagnosticService *service.DiagnosticService, sessionService *service.SessionService) *DiagnosticController {
	return &DiagnosticController{
		DiagnosticService: diagnosticService,
		SessionService:    sessionService,
	}
}

// @Summary 开始诊断测试
// @Description 创建诊断会话并返回第一题
// @Tags 诊断测试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param seedLevel query int false "起始难度等级" default(1)
// @Success 200 {object} util.Response
// @Router /api/diagnostic/start [get]
func (c *DiagnosticController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	seedLevel := 1
	if s := ctx.Query("seedLevel"); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			seedLevel = v
		}
	}

	resp, err := c.DiagnosticService.StartDiagnostic(seedLevel)
	if err != nil {
		if errors.Is(err, util.ErrNoQuestionsAtLevel) {
			util.Error(ctx, 500, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, resp)
}

// @Summary 提交诊断答案
// @Description 提交当前题目的答案，返回下一题或结束原因
// @Tags 诊断测试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param answer body service.DiagnosticAnswerRequest true "答题信息与会话状态"
// @Success 200 {object} util.Response
// @Router /api/diagnostic/answer [post]
func (c *DiagnosticController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.DiagnosticAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	resp, err := c.DiagnosticService.SubmitAnswer(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidWorkingLevel), errors.Is(err, util.ErrMissingAnswer):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrNoQuestionsAtLevel):
			util.Error(ctx, 500, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, resp)
}

type DiagnosticCompleteRequest struct {
	FinalLevel int                           `json:"finalLevel" binding:"required"`
	Telemetry  *service.PerformanceTelemetry `json:"performanceTelemetry"`
}

// @Summary 完成诊断测试
// @Description 按最终定级计算评分与段位，更新进度并解锁成就
// @Tags 诊断测试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param completion body DiagnosticCompleteRequest true "定级结果"
// @Success 200 {object} util.Response
// @Router /api/diagnostic/complete [post]
func (c *DiagnosticController) Complete(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req DiagnosticCompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.CompleteDiagnostic(user.UserID, req.FinalLevel, req.Telemetry)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidFinalLevel):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrDiagnosticAlreadyDone):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrDiagnosticPersist):
			util.ServiceUnavailable(ctx, err.Error())
		case errors.Is(err, util.ErrUnknownLevel), errors.Is(err, util.ErrNoQualifyingRank):
			util.Error(ctx, 500, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
