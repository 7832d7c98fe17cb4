package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dcastillo-uci/carga-docente-backend/config"
	"github.com/dcastillo-uci/carga-docente-backend/middleware"
	"github.com/dcastillo-uci/carga-docente-backend/models"
	"github.com/dcastillo-uci/carga-docente-backend/permissions"
	"github.com/dcastillo-uci/carga-docente-backend/ws"
)

// ====== INPUT STRUCTS ======
type CommentInput struct {
	Assignment  *uuid.UUID         `json:"assignment"`
	CommentType models.CommentType `json:"comment_type"`
	Subject     string             `json:"subject" binding:"required,max=200"`
	Message     string             `json:"message" binding:"required"`
}

type ReplyInput struct {
	Message string `json:"message" binding:"required"`
}

type ReplyUpdateInput struct {
	Message *string `json:"message"`
}

// ====== HANDLERS ======

// ListComments devuelve los comentarios visibles para el usuario: los
// roles de dirección ven todos, el resto solo los propios.
func ListComments(c *gin.Context) {
	user := middleware.CurrentUser(c)
	query := config.DB.Model(&models.Comment{}).Preload("Author").Preload("ReadBy").Preload("Replies.Author")

	if !permissions.Allowed(user.Role, permissions.ViewComments) {
		query = query.Where("author_id = ?", user.ID)
	}
	if isRead, ok := parseBoolQuery(c, "is_read"); ok {
		query = query.Where("is_read = ?", isRead)
	}
	if commentType := c.Query("comment_type"); commentType != "" {
		query = query.Where("comment_type = ?", commentType)
	}
	if assignment := c.Query("assignment"); assignment != "" {
		query = query.Where("assignment_id = ?", assignment)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(subject) LIKE ? OR LOWER(message) LIKE ?", pattern, pattern)
	}

	var comments []models.Comment
	if err := query.Order("created_at DESC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar los comentarios"})
		return
	}
	c.JSON(http.StatusOK, commentResults(comments))
}

func GetComment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	comment, ok := findComment(c)
	if !ok {
		return
	}
	if !permissions.Allowed(user.Role, permissions.ViewComments) && comment.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": permissions.Message(permissions.ViewComments)})
		return
	}
	c.JSON(http.StatusOK, commentPayload(comment))
}

// CreateComment registra el comentario y notifica por WebSocket a los
// roles que revisan el buzón.
func CreateComment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	commentType := input.CommentType
	if commentType == "" {
		commentType = models.CommentGeneral
	}
	if !commentType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"comment_type": "Tipo de comentario no válido."})
		return
	}
	if input.Assignment != nil {
		var assignment models.Assignment
		if err := config.DB.First(&assignment, "id = ?", *input.Assignment).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"assignment": "La asignación indicada no existe."})
			return
		}
	}

	comment := models.Comment{
		AuthorID:     user.ID,
		AssignmentID: input.Assignment,
		CommentType:  commentType,
		Subject:      input.Subject,
		Message:      input.Message,
	}
	if err := config.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear el comentario"})
		return
	}

	config.DB.Preload("Author").First(&comment, "id = ?", comment.ID)
	notifyReviewers(&comment)
	c.JSON(http.StatusCreated, commentPayload(&comment))
}

func DeleteComment(c *gin.Context) {
	user := middleware.CurrentUser(c)

	comment, ok := findComment(c)
	if !ok {
		return
	}
	if comment.AuthorID != user.ID && !permissions.Allowed(user.Role, permissions.ViewComments) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permiso para eliminar este comentario."})
		return
	}

	if err := config.DB.Where("comment_id = ?", comment.ID).Delete(&models.CommentReply{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el comentario"})
		return
	}
	if err := config.DB.Delete(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar el comentario"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comentario eliminado correctamente."})
}

// MarkCommentRead marca el comentario como leído. Solo los roles que
// revisan el buzón pueden hacerlo.
func MarkCommentRead(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !permissions.Allowed(user.Role, permissions.ViewComments) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para marcar comentarios como leídos."})
		return
	}

	comment, ok := findComment(c)
	if !ok {
		return
	}

	comment.MarkRead(user, time.Now())
	if err := config.DB.Save(comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al marcar el comentario"})
		return
	}

	ws.SendBadgeUpdate(user.ID.String(), unreadCount())
	c.JSON(http.StatusOK, commentPayload(comment))
}

// ReplyToComment crea una respuesta y marca el hilo como atendido.
func ReplyToComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !permissions.Allowed(user.Role, permissions.ViewComments) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para responder comentarios."})
		return
	}

	comment, ok := findComment(c)
	if !ok {
		return
	}

	var input ReplyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := models.CommentReply{
		CommentID: comment.ID,
		AuthorID:  user.ID,
		Message:   input.Message,
	}
	if err := config.DB.Create(&reply).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al crear la respuesta"})
		return
	}

	if !comment.IsRead {
		comment.MarkRead(user, time.Now())
		config.DB.Save(comment)
	}

	ws.SendBadgeUpdate(comment.AuthorID.String(), unreadCount())
	c.JSON(http.StatusCreated, replyPayload(&reply, user))
}

// UnreadComments devuelve el contador y la lista de no leídos.
func UnreadComments(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !permissions.Allowed(user.Role, permissions.ViewComments) {
		c.JSON(http.StatusForbidden, gin.H{"error": permissions.Message(permissions.ViewComments)})
		return
	}

	var comments []models.Comment
	if err := config.DB.Preload("Author").Where("is_read = ?", false).
		Order("created_at DESC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al consultar los comentarios"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(comments),
		"results": commentResults(comments),
	})
}

// CommentStatistics resume el buzón: totales y desglose por tipo con la
// etiqueta en español como clave.
func CommentStatistics(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if !permissions.Allowed(user.Role, permissions.ViewComments) {
		c.JSON(http.StatusForbidden, gin.H{"error": "No tiene permisos para ver estadísticas."})
		return
	}

	var total, unread int64
	config.DB.Model(&models.Comment{}).Count(&total)
	config.DB.Model(&models.Comment{}).Where("is_read = ?", false).Count(&unread)

	byType := gin.H{}
	for _, choice := range models.CommentTypeChoices() {
		var count int64
		config.DB.Model(&models.Comment{}).Where("comment_type = ?", choice.Value).Count(&count)
		byType[choice.Label] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   total,
		"unread":  unread,
		"read":    total - unread,
		"by_type": byType,
	})
}

func GetCommentTypes(c *gin.Context) {
	c.JSON(http.StatusOK, models.CommentTypeChoices())
}

// ====== REPLIES ======

func ListReplies(c *gin.Context) {
	query := config.DB.Model(&models.CommentReply{}).Preload("Author")
	if comment := c.Query("comment"); comment != "" {
		query = query.Where("comment_id = ?", comment)
	}

	var replies []models.CommentReply
	if err := query.Order("created_at").Find(&replies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al listar las respuestas"})
		return
	}

	results := make([]gin.H, 0, len(replies))
	for i := range replies {
		results = append(results, replyPayload(&replies[i], &replies[i].Author))
	}
	c.JSON(http.StatusOK, results)
}

func UpdateReply(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var reply models.CommentReply
	if err := config.DB.Preload("Author").First(&reply, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Respuesta no encontrada"})
		return
	}
	if reply.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Solo el autor puede editar su respuesta."})
		return
	}

	var input ReplyUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Message != nil {
		reply.Message = *input.Message
	}

	if err := config.DB.Save(&reply).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al actualizar la respuesta"})
		return
	}
	c.JSON(http.StatusOK, replyPayload(&reply, user))
}

func DeleteReply(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var reply models.CommentReply
	if err := config.DB.First(&reply, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Respuesta no encontrada"})
		return
	}
	if reply.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Solo el autor puede eliminar su respuesta."})
		return
	}

	if err := config.DB.Delete(&reply).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al eliminar la respuesta"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Respuesta eliminada correctamente."})
}

// ====== HELPERS ======

func findComment(c *gin.Context) (*models.Comment, bool) {
	var comment models.Comment
	if err := config.DB.Preload("Author").Preload("ReadBy").Preload("Replies.Author").
		First(&comment, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comentario no encontrado"})
		return nil, false
	}
	return &comment, true
}

func commentResults(comments []models.Comment) []gin.H {
	results := make([]gin.H, 0, len(comments))
	for i := range comments {
		results = append(results, commentPayload(&comments[i]))
	}
	return results
}

func commentPayload(comment *models.Comment) gin.H {
	payload := gin.H{
		"id":                   comment.ID,
		"author":               comment.AuthorID,
		"author_name":          comment.Author.FullName(),
		"assignment":           comment.AssignmentID,
		"comment_type":         comment.CommentType,
		"comment_type_display": comment.CommentType.Display(),
		"subject":              comment.Subject,
		"message":              comment.Message,
		"is_read":              comment.IsRead,
		"read_by":              comment.ReadByID,
		"read_by_name":         nil,
		"read_at":              comment.ReadAt,
		"created_at":           comment.CreatedAt,
		"updated_at":           comment.UpdatedAt,
	}
	if comment.ReadBy != nil {
		payload["read_by_name"] = comment.ReadBy.FullName()
	}

	replies := make([]gin.H, 0, len(comment.Replies))
	for i := range comment.Replies {
		reply := &comment.Replies[i]
		replies = append(replies, replyPayload(reply, &reply.Author))
	}
	payload["replies"] = replies
	return payload
}

func replyPayload(reply *models.CommentReply, author *models.User) gin.H {
	payload := gin.H{
		"id":          reply.ID,
		"comment":     reply.CommentID,
		"author":      reply.AuthorID,
		"author_name": nil,
		"message":     reply.Message,
		"created_at":  reply.CreatedAt,
	}
	if author != nil && author.ID == reply.AuthorID {
		payload["author_name"] = author.FullName()
	}
	return payload
}

// notifyReviewers empuja el aviso de nuevo comentario a los usuarios con
// acceso al buzón.
func notifyReviewers(comment *models.Comment) {
	var reviewers []models.User
	if err := config.DB.Where("is_active = ? AND is_blocked = ?", true, false).
		Find(&reviewers).Error; err != nil {
		return
	}

	ids := make([]string, 0, len(reviewers))
	for i := range reviewers {
		if permissions.Allowed(reviewers[i].Role, permissions.ViewComments) {
			ids = append(ids, reviewers[i].ID.String())
		}
	}
	ws.NotifyNewComment(ids, comment.ID.String(), string(comment.CommentType), comment.Subject, unreadCount())
}

func unreadCount() int64 {
	var count int64
	config.DB.Model(&models.Comment{}).Where("is_read = ?", false).Count(&count)
	return count
}
