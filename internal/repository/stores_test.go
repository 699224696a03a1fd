package repository_test

import (
	"github.com/iliyamo/design-studio/internal/repository"
	"github.com/iliyamo/design-studio/internal/service"
)

var (
	_ service.UserStore         = (*repository.UserRepo)(nil)
	_ service.QuotaStore        = (*repository.QuotaRepo)(nil)
	_ service.DesignStore       = (*repository.DesignRepo)(nil)
	_ service.OrderStore        = (*repository.OrderRepo)(nil)
	_ service.CouponStore       = (*repository.CouponRepo)(nil)
	_ service.NotificationStore = (*repository.NotificationRepo)(nil)
	_ service.ShowcaseStore     = (*repository.ShowcaseRepo)(nil)
	_ service.StatsStore        = (*repository.StatsRepo)(nil)
)
