package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates every table the service needs.  Statements are
// idempotent and run in order on startup.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id             CHAR(36)     NOT NULL PRIMARY KEY,
		username       VARCHAR(100) NOT NULL,
		email          VARCHAR(255) NOT NULL,
		password_hash  VARCHAR(255) NOT NULL,
		is_admin       BOOLEAN      NOT NULL DEFAULT FALSE,
		designs_limit  INT          NOT NULL DEFAULT 3,
		designs_used   INT          NOT NULL DEFAULT 0,
		is_unlimited   BOOLEAN      NOT NULL DEFAULT FALSE,
		email_verified BOOLEAN      NOT NULL DEFAULT FALSE,
		measurements   JSON         NULL,
		created_at     DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email),
		CHECK (designs_used >= 0),
		CHECK (designs_limit >= 0)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS quota_holds (
		id         CHAR(36)    NOT NULL PRIMARY KEY,
		user_id    CHAR(36)    NOT NULL,
		token      CHAR(36)    NOT NULL,
		expires_at DATETIME(6) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_quota_holds_token (token),
		KEY idx_quota_holds_user (user_id, expires_at),
		CONSTRAINT fk_quota_holds_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS designs (
		id                CHAR(36)     NOT NULL PRIMARY KEY,
		user_id           CHAR(36)     NOT NULL,
		prompt            TEXT         NOT NULL,
		image_base64      LONGTEXT     NOT NULL,
		clothing_type     VARCHAR(50)  NOT NULL DEFAULT '',
		template_id       VARCHAR(50)  NOT NULL DEFAULT '',
		color             VARCHAR(50)  NOT NULL DEFAULT '',
		phone_number      VARCHAR(50)  NOT NULL DEFAULT '',
		user_photo_base64 LONGTEXT     NOT NULL,
		logo_base64       LONGTEXT     NOT NULL,
		is_favorite       BOOLEAN      NOT NULL DEFAULT FALSE,
		created_at        DATETIME(6)  NOT NULL,
		KEY idx_designs_user (user_id, created_at),
		CONSTRAINT fk_designs_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                  CHAR(36)      NOT NULL PRIMARY KEY,
		user_id             CHAR(36)      NOT NULL,
		design_id           CHAR(36)      NULL,
		design_image_base64 LONGTEXT      NOT NULL,
		prompt              TEXT          NOT NULL,
		phone_number        VARCHAR(50)   NOT NULL,
		size                VARCHAR(10)   NOT NULL,
		color               VARCHAR(50)   NOT NULL DEFAULT '',
		price               DECIMAL(10,2) NOT NULL,
		discount            DECIMAL(10,2) NOT NULL DEFAULT 0,
		final_price         DECIMAL(10,2) NOT NULL,
		coupon_code         VARCHAR(50)   NULL,
		notes               TEXT          NOT NULL,
		status              ENUM('pending','processing','completed','cancelled') NOT NULL DEFAULT 'pending',
		created_at          DATETIME(6)   NOT NULL,
		KEY idx_orders_user (user_id, created_at),
		KEY idx_orders_status (status),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS coupons (
		id                  CHAR(36)      NOT NULL PRIMARY KEY,
		code                VARCHAR(50)   NOT NULL,
		discount_percentage DECIMAL(5,2)  NOT NULL,
		expiry_date         DATETIME(6)   NOT NULL,
		is_active           BOOLEAN       NOT NULL DEFAULT TRUE,
		max_uses            INT           NULL,
		current_uses        INT           NOT NULL DEFAULT 0,
		created_at          DATETIME(6)   NOT NULL,
		UNIQUE KEY uq_coupons_code (code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS coupon_usages (
		id          CHAR(36)    NOT NULL PRIMARY KEY,
		coupon_id   CHAR(36)    NOT NULL,
		coupon_code VARCHAR(50) NOT NULL,
		user_id     CHAR(36)    NOT NULL,
		order_id    CHAR(36)    NULL,
		used_at     DATETIME(6) NOT NULL,
		UNIQUE KEY uq_coupon_usages_order (coupon_id, order_id),
		CONSTRAINT fk_coupon_usages_coupon FOREIGN KEY (coupon_id) REFERENCES coupons(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id               CHAR(36)     NOT NULL PRIMARY KEY,
		user_id          CHAR(36)     NOT NULL,
		title            VARCHAR(255) NOT NULL,
		message          TEXT         NOT NULL,
		type             ENUM('info','success','warning','error') NOT NULL DEFAULT 'info',
		is_read          BOOLEAN      NOT NULL DEFAULT FALSE,
		related_order_id CHAR(36)     NULL,
		created_at       DATETIME(6)  NOT NULL,
		KEY idx_notifications_user (user_id, is_read, created_at),
		CONSTRAINT fk_notifications_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS showcase_designs (
		id            CHAR(36)     NOT NULL PRIMARY KEY,
		title         VARCHAR(255) NOT NULL,
		description   TEXT         NOT NULL,
		prompt        TEXT         NOT NULL,
		image_base64  LONGTEXT     NOT NULL,
		clothing_type VARCHAR(50)  NOT NULL,
		color         VARCHAR(50)  NOT NULL DEFAULT '',
		template_id   VARCHAR(50)  NOT NULL DEFAULT '',
		tags          JSON         NOT NULL,
		likes_count   INT          NOT NULL DEFAULT 0,
		is_featured   BOOLEAN      NOT NULL DEFAULT FALSE,
		is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
		created_at    DATETIME(6)  NOT NULL,
		updated_at    DATETIME(6)  NULL,
		KEY idx_showcase_listing (is_active, is_featured, likes_count)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates missing tables.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
