package repositories

import (
	"database/sql"
	"time"

	"finance-service/internal/models"
)

type NotificationRepository interface {
	InsertRule(nr *models.NotificationRule) error
	ListActiveRules() ([]*models.NotificationRule, error)
	ListRulesForOwner(ownerID string) ([]*models.NotificationRule, error)
	UpdateRule(nr *models.NotificationRule) error
	DeleteRule(ownerID string, id int64) error
	TouchLastRun(id int64) error
}

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) InsertRule(nr *models.NotificationRule) error {
	query := `
		INSERT INTO notification_rules (owner_id, kind, days_before, channel, target, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		nr.OwnerID,
		nr.Kind,
		nr.DaysBefore,
		nr.Channel,
		nr.Target,
		nr.Active,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	nr.ID = id
	return nil
}

func (r *notificationRepository) ListActiveRules() ([]*models.NotificationRule, error) {
	return r.listRules(`SELECT id, owner_id, kind, days_before, channel, target, active, last_run
		FROM notification_rules WHERE active = TRUE`, nil)
}

func (r *notificationRepository) ListRulesForOwner(ownerID string) ([]*models.NotificationRule, error) {
	return r.listRules(`SELECT id, owner_id, kind, days_before, channel, target, active, last_run
		FROM notification_rules WHERE owner_id = ?`, []interface{}{ownerID})
}

func (r *notificationRepository) listRules(query string, args []interface{}) ([]*models.NotificationRule, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.NotificationRule
	for rows.Next() {
		nr := &models.NotificationRule{}
		err := rows.Scan(
			&nr.ID,
			&nr.OwnerID,
			&nr.Kind,
			&nr.DaysBefore,
			&nr.Channel,
			&nr.Target,
			&nr.Active,
			&nr.LastRun,
		)
		if err != nil {
			return nil, err
		}
		rules = append(rules, nr)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *notificationRepository) UpdateRule(nr *models.NotificationRule) error {
	query := `
		UPDATE notification_rules
		SET kind = ?, days_before = ?, channel = ?, target = ?, active = ?
		WHERE id = ? AND owner_id = ?
	`
	result, err := r.db.Exec(query,
		nr.Kind,
		nr.DaysBefore,
		nr.Channel,
		nr.Target,
		nr.Active,
		nr.ID,
		nr.OwnerID,
	)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteRule(ownerID string, id int64) error {
	result, err := r.db.Exec(`DELETE FROM notification_rules WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *notificationRepository) TouchLastRun(id int64) error {
	_, err := r.db.Exec(`UPDATE notification_rules SET last_run = ? WHERE id = ?`, time.Now().Format("2006-01-02 15:04:05"), id)
	return err
}
