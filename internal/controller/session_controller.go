package controller

import (
	"errors"

	"skill_quest_backend/internal/service"
	"skill_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	SessionService *service.SessionService
}

func NewSessionController(sessionService *service.SessionService) *SessionController {
	return &SessionController{SessionService: sessionService}
}

type PracticeCompleteRequest struct {
	SessionStartRating int `json:"sessionStartRating" binding:"required"`
	SessionEndRating   int `json:"sessionEndRating" binding:"required"`
}

// @Summary 完成练习会话
// @Description 按会话起止评分更新长期进度并解锁成就
// @Tags 学习会话
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param completion body PracticeCompleteRequest true "会话起止评分"
// @Success 200 {object} util.Response
// @Router /api/sessions/complete [post]
func (c *SessionController) CompletePractice(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req PracticeCompleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.SessionService.CompletePractice(user.UserID, req.SessionStartRating, req.SessionEndRating)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrNoQualifyingRank):
			util.Error(ctx, 500, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}
