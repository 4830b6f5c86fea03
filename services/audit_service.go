package services

import "internship-portal/models"

// AuditService lists activity logs and security events for admins
type AuditService struct {
	repo AuditRepository
}

func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

func (as *AuditService) ActivityLogs(filter models.ActivityFilter) (models.PageResult[models.ActivityLog], error) {
	logs, total, err := as.repo.ListActivityLogs(filter)
	if err != nil {
		return models.PageResult[models.ActivityLog]{}, err
	}
	return models.NewPageResult(logs, total, filter.Page), nil
}

func (as *AuditService) SecurityEvents(filter models.SecurityFilter) (models.PageResult[models.SecurityEvent], error) {
	events, total, err := as.repo.ListSecurityEvents(filter)
	if err != nil {
		return models.PageResult[models.SecurityEvent]{}, err
	}
	return models.NewPageResult(events, total, filter.Page), nil
}
