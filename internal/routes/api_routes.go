package routes

import (
	"meridian-sms/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes wires every resource group under /api.
func RegisterAPIRoutes(rg *gin.RouterGroup) {
	schools := rg.Group("/schools")
	{
		schools.GET("", handlers.ListSchoolsHandler)
		schools.POST("", handlers.CreateSchoolHandler)
		schools.GET("/:id", handlers.GetSchoolHandler)
		schools.PUT("/:id", handlers.UpdateSchoolHandler)
		schools.DELETE("/:id", handlers.DeleteSchoolHandler)
	}

	years := rg.Group("/academic-years")
	{
		years.GET("", handlers.ListAcademicYearsHandler)
		years.POST("", handlers.CreateAcademicYearHandler)
		years.PUT("/:id", handlers.UpdateAcademicYearHandler)
		years.DELETE("/:id", handlers.DeleteAcademicYearHandler)
		years.POST("/:id/set-current", handlers.SetCurrentAcademicYearHandler)
	}

	grades := rg.Group("/grade-levels")
	{
		grades.GET("", handlers.ListGradeLevelsHandler)
		grades.POST("", handlers.CreateGradeLevelHandler)
		grades.PUT("/:id", handlers.UpdateGradeLevelHandler)
		grades.DELETE("/:id", handlers.DeleteGradeLevelHandler)
		grades.GET("/:id/stats", handlers.GetGradeLevelStatsHandler)
	}

	sections := rg.Group("/sections")
	{
		sections.GET("", handlers.ListSectionsHandler)
		sections.POST("", handlers.CreateSectionHandler)
		sections.GET("/:id", handlers.GetSectionHandler)
		sections.PUT("/:id", handlers.UpdateSectionHandler)
		sections.DELETE("/:id", handlers.DeleteSectionHandler)
		sections.GET("/:id/grade-summary", handlers.GetSectionGradeSummaryHandler)
	}

	subjects := rg.Group("/subjects")
	{
		subjects.GET("", handlers.ListSubjectsHandler)
		subjects.POST("", handlers.CreateSubjectHandler)
		subjects.PUT("/:id", handlers.UpdateSubjectHandler)
		subjects.DELETE("/:id", handlers.DeleteSubjectHandler)
	}

	students := rg.Group("/students")
	{
		students.GET("", handlers.ListStudentsHandler)
		students.POST("", handlers.CreateStudentHandler)
		students.GET("/:id", handlers.GetStudentHandler)
		students.PUT("/:id", handlers.UpdateStudentHandler)
		students.DELETE("/:id", handlers.DeleteStudentHandler)
		students.POST("/:id/family-links", handlers.AddFamilyLinkHandler)
		students.DELETE("/:id/family-links/:linkId", handlers.RemoveFamilyLinkHandler)
		students.PUT("/:id/family-order", handlers.UpdateFamilyOrderHandler)
		students.GET("/:id/fee-summary", handlers.GetStudentFeeSummaryHandler)
	}

	categories := rg.Group("/fee-categories")
	{
		categories.GET("", handlers.ListFeeCategoriesHandler)
		categories.POST("", handlers.CreateFeeCategoryHandler)
		categories.PUT("/:id", handlers.UpdateFeeCategoryHandler)
		categories.DELETE("/:id", handlers.DeleteFeeCategoryHandler)
	}

	structures := rg.Group("/fee-structures")
	{
		structures.GET("", handlers.ListFeeStructuresHandler)
		structures.POST("", handlers.CreateFeeStructureHandler)
		structures.PUT("/:id", handlers.UpdateFeeStructureHandler)
		structures.DELETE("/:id", handlers.DeleteFeeStructureHandler)
		structures.POST("/bulk", handlers.BulkUpdateFeeStructuresHandler)
	}

	overrides := rg.Group("/fee-overrides")
	{
		overrides.GET("", handlers.ListFeeOverridesHandler)
		overrides.POST("", handlers.CreateFeeOverrideHandler)
		overrides.PUT("/:id", handlers.UpdateFeeOverrideHandler)
		overrides.DELETE("/:id", handlers.DeleteFeeOverrideHandler)
	}

	policies := rg.Group("/fee-policies")
	{
		policies.GET("/sibling-tiers", handlers.ListSiblingTiersHandler)
		policies.POST("/sibling-tiers", handlers.CreateSiblingTierHandler)
		policies.PUT("/sibling-tiers/:id", handlers.UpdateSiblingTierHandler)
		policies.DELETE("/sibling-tiers/:id", handlers.DeleteSiblingTierHandler)
		policies.GET("/late-fee", handlers.GetLateFeePolicyHandler)
		policies.PUT("/late-fee", handlers.UpsertLateFeePolicyHandler)
	}

	fees := rg.Group("/student-fees")
	{
		fees.GET("", handlers.ListStudentFeesHandler)
		fees.POST("/assess", handlers.AssessStudentFeeHandler)
		fees.GET("/:id", handlers.GetStudentFeeHandler)
		fees.POST("/:id/adjustments", handlers.ApplyAdjustmentHandler)
		fees.POST("/:id/waive", handlers.WaiveStudentFeeHandler)
		fees.POST("/:id/schedule", handlers.GenerateFeeScheduleHandler)
		fees.GET("/:id/schedule", handlers.ListFeeScheduleHandler)
		fees.POST("/generate-monthly", handlers.GenerateMonthlyFeesHandler)
		fees.GET("/export", handlers.ExportStudentFeesHandler)
	}

	plans := rg.Group("/payment-plans")
	{
		plans.GET("", handlers.ListPaymentPlansHandler)
		plans.POST("", handlers.CreatePaymentPlanHandler)
		plans.PUT("/:id", handlers.UpdatePaymentPlanHandler)
		plans.DELETE("/:id", handlers.DeletePaymentPlanHandler)
	}

	payments := rg.Group("/payments")
	{
		payments.GET("", handlers.ListPaymentsHandler)
		payments.POST("", handlers.CreatePaymentHandler)
		payments.GET("/:id/receipt", handlers.GetReceiptHandler)
	}
	rg.POST("/webhooks/bank-payment", handlers.BankPaymentWebhookHandler)

	payees := rg.Group("/payees")
	{
		payees.GET("", handlers.ListPayeesHandler)
		payees.POST("", handlers.CreatePayeeHandler)
		payees.GET("/:id", handlers.GetPayeeHandler)
		payees.PUT("/:id", handlers.UpdatePayeeHandler)
		payees.POST("/:id/deactivate", handlers.DeactivatePayeeHandler)
	}

	expenses := rg.Group("/expenses")
	{
		expenses.GET("", handlers.ListExpensesHandler)
		expenses.POST("", handlers.CreateExpenseHandler)
		expenses.PUT("/:id", handlers.UpdateExpenseHandler)
		expenses.DELETE("/:id", handlers.DeleteExpenseHandler)
		expenses.GET("/export", handlers.ExportExpensesHandler)
	}

	grading := rg.Group("/grading")
	{
		grading.GET("/periods", handlers.ListGradingPeriodsHandler)
		grading.POST("/periods", handlers.CreateGradingPeriodHandler)
		grading.DELETE("/periods/:id", handlers.DeleteGradingPeriodHandler)
		grading.GET("/entries", handlers.ListGradeEntriesHandler)
		grading.POST("/entries", handlers.UpsertGradeEntryHandler)
		grading.DELETE("/entries/:id", handlers.DeleteGradeEntryHandler)
	}

	plansLessons := rg.Group("/lesson-plans")
	{
		plansLessons.GET("", handlers.ListLessonPlansHandler)
		plansLessons.POST("", handlers.CreateLessonPlanHandler)
		plansLessons.GET("/:id", handlers.GetLessonPlanHandler)
		plansLessons.PUT("/:id", handlers.UpdateLessonPlanHandler)
		plansLessons.POST("/:id/publish", handlers.PublishLessonPlanHandler)
		plansLessons.DELETE("/:id", handlers.DeleteLessonPlanHandler)
	}

	timetable := rg.Group("/timetable")
	{
		timetable.GET("", handlers.ListTimetableHandler)
		timetable.POST("", handlers.CreateTimetableEntryHandler)
		timetable.PUT("/:id", handlers.UpdateTimetableEntryHandler)
		timetable.POST("/:id/confirm", handlers.ConfirmTimetableEntryHandler)
		timetable.DELETE("/:id", handlers.DeleteTimetableEntryHandler)
		timetable.POST("/generate", handlers.GenerateTimetableDraftHandler)
	}

	library := rg.Group("/library")
	{
		library.GET("/books", handlers.ListBooksHandler)
		library.POST("/books", handlers.CreateBookHandler)
		library.PUT("/books/:id", handlers.UpdateBookHandler)
		library.DELETE("/books/:id", handlers.DeleteBookHandler)
		library.GET("/loans", handlers.ListLoansHandler)
		library.POST("/loans", handlers.BorrowBookHandler)
		library.POST("/loans/:id/return", handlers.ReturnBookHandler)
		library.GET("/loans/export", handlers.DownloadLoanRegisterHandler)
	}
}
