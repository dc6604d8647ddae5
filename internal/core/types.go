package core

import "feedlot/pkg/domain"

type (
	EntityType         = domain.EntityType
	PenStatus          = domain.PenStatus
	CattleCategory     = domain.CattleCategory
	PlanStatus         = domain.PlanStatus
	NutritionistStatus = domain.NutritionistStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Pen                = domain.Pen
	WeightRecord       = domain.WeightRecord
	FeedingPlan        = domain.FeedingPlan
	FeedingSchedule    = domain.FeedingSchedule
	Ingredient         = domain.Ingredient
	FedIngredient      = domain.FedIngredient
	FeedingRecord      = domain.FeedingRecord
	DeathLoss          = domain.DeathLoss
	TreatmentRecord    = domain.TreatmentRecord
	PartialSale        = domain.PartialSale
	CattleSale         = domain.CattleSale
	Nutritionist       = domain.Nutritionist
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityPen             = domain.EntityPen
	EntityFeedingPlan     = domain.EntityFeedingPlan
	EntityFeedingSchedule = domain.EntityFeedingSchedule
	EntityFeedingRecord   = domain.EntityFeedingRecord
	EntityDeathLoss       = domain.EntityDeathLoss
	EntityTreatment       = domain.EntityTreatment
	EntityPartialSale     = domain.EntityPartialSale
	EntityCattleSale      = domain.EntityCattleSale
	EntityNutritionist    = domain.EntityNutritionist
)

const (
	PenStatusActive      = domain.PenStatusActive
	PenStatusMaintenance = domain.PenStatusMaintenance
	PenStatusInactive    = domain.PenStatusInactive
)

const (
	CategorySteers  = domain.CategorySteers
	CategoryHeifers = domain.CategoryHeifers
	CategoryMixed   = domain.CategoryMixed
)

const (
	PlanStatusActive    = domain.PlanStatusActive
	PlanStatusUpcoming  = domain.PlanStatusUpcoming
	PlanStatusCompleted = domain.PlanStatusCompleted
)

const (
	NutritionistInvited = domain.NutritionistInvited
	NutritionistActive  = domain.NutritionistActive
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
)
