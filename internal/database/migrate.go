package database

import (
	"context"
	"database/sql"
	"log"
)

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so the server can run them unconditionally at startup.
//
// The users table is owned by the external member-management system; it is
// created here only so a fresh development database is usable. Reservations
// carry the attendance state machine in their status column; every
// soft-deletable table uses a nullable DATETIME as its delete marker.
func Migrate(ctx context.Context, db *sql.DB) error {
	log.Println("running schema migrations")
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			full_name  VARCHAR(120)    NOT NULL,
			role       ENUM('ADMIN','INSTRUCTOR','MEMBER') NOT NULL,
			is_active  TINYINT(1)      NOT NULL DEFAULT 1,
			created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS class_templates (
			id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			instructor_id  BIGINT UNSIGNED NOT NULL,
			name           VARCHAR(120)    NOT NULL,
			weekday        TINYINT         NOT NULL,
			start_time     TIME            NOT NULL,
			end_time       TIME            NOT NULL,
			capacity       INT             NOT NULL,
			deactivated_at DATETIME        NULL,
			created_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at     DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_templates_instructor_weekday (instructor_id, weekday),
			CONSTRAINT fk_templates_instructor FOREIGN KEY (instructor_id) REFERENCES users (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS class_instances (
			id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			template_id  BIGINT UNSIGNED NOT NULL,
			class_date   DATE            NOT NULL,
			room         TINYINT         NOT NULL,
			cancelled_at DATETIME        NULL,
			created_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_instances_template_date (template_id, class_date),
			KEY idx_instances_date_room (class_date, room),
			CONSTRAINT fk_instances_template FOREIGN KEY (template_id) REFERENCES class_templates (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			member_id   BIGINT UNSIGNED NOT NULL,
			instance_id BIGINT UNSIGNED NOT NULL,
			status      ENUM('RESERVED','CANCELLED','PRESENT','ABSENT') NOT NULL DEFAULT 'RESERVED',
			reserved_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY idx_reservations_instance_status (instance_id, status),
			KEY idx_reservations_member (member_id),
			CONSTRAINT fk_reservations_member FOREIGN KEY (member_id) REFERENCES users (id),
			CONSTRAINT fk_reservations_instance FOREIGN KEY (instance_id) REFERENCES class_instances (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			log.Printf("migration failed: %v", err)
			return err
		}
	}
	log.Println("schema migrations completed")
	return nil
}
