package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"meridian-sms/config"
	"meridian-sms/internal/fees"
	"meridian-sms/models"
)

type StudentInput struct {
	SchoolID      uint   `json:"schoolId" binding:"required"`
	GradeLevelID  *uint  `json:"gradeLevelId"`
	SectionID     *uint  `json:"sectionId"`
	LastName      string `json:"lastName" binding:"required"`
	FirstName     string `json:"firstName" binding:"required"`
	MiddleName    string `json:"middleName"`
	Gender        string `json:"gender"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GuardianName  string `json:"guardianName"`
	GuardianPhone string `json:"guardianPhone"`
	IsEnrolled    *bool  `json:"isEnrolled"`
}

// validGradeLevel checks that the grade level belongs to the school that
// owns school-wide resources for schoolID (the parent for a campus), so
// fee structure lookups keyed by grade level cannot miss. Writes the
// error response itself and returns false on failure.
func validGradeLevel(c *gin.Context, schoolID uint, gradeLevelID *uint) bool {
	if gradeLevelID == nil {
		return true
	}
	resourceID, ok := resourceSchoolID(c, schoolID)
	if !ok {
		return false
	}
	var level models.GradeLevel
	if !firstOr404(c, &level, *gradeLevelID, "Grade level") {
		return false
	}
	if level.SchoolID != resourceID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Grade level belongs to a different school"})
		return false
	}
	return true
}

// StudentListResponse is the flat row shape for the paginated list.
type StudentListResponse struct {
	ID         uint   `json:"ID"`
	LastName   string `json:"lastName"`
	FirstName  string `json:"firstName"`
	GradeLevel string `json:"gradeLevel"`
	Section    string `json:"section"`
	IsEnrolled bool   `json:"isEnrolled"`
}

func ListStudentsHandler(c *gin.Context) {
	var students []StudentListResponse
	var totalRows int64

	baseQuery := config.DB.Table("students").
		Select(`
            students.id,
            students.last_name,
            students.first_name,
            COALESCE(grade_levels.name, '') as grade_level,
            COALESCE(sections.name, '') as section,
            COALESCE(students.is_enrolled, TRUE) as is_enrolled
        `).
		Joins("LEFT JOIN grade_levels ON students.grade_level_id = grade_levels.id").
		Joins("LEFT JOIN sections ON students.section_id = sections.id").
		Where("students.deleted_at IS NULL")

	if schoolID := c.Query("schoolId"); schoolID != "" {
		baseQuery = baseQuery.Where("students.school_id = ?", schoolID)
	}
	if sectionID := c.Query("sectionId"); sectionID != "" {
		baseQuery = baseQuery.Where("students.section_id = ?", sectionID)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		baseQuery = baseQuery.Where(
			"LOWER(students.last_name) LIKE ? OR LOWER(students.first_name) LIKE ?",
			pattern, pattern,
		)
	}

	if err := baseQuery.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count students"})
		return
	}

	if err := baseQuery.Scopes(Paginate(c)).
		Order("students.last_name, students.first_name").
		Scan(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch students"})
		return
	}
	if students == nil {
		students = make([]StudentListResponse, 0)
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, students, totalRows))
}

// FamilyMemberResponse carries one sibling with the discount the current
// tier table would give them, for display only; the persisted discount is
// written when fees are assessed.
type FamilyMemberResponse struct {
	models.Student
	DiscountPercent float64 `json:"discountPercent"`
	IsSelf          bool    `json:"isSelf"`
	LinkID          uint    `json:"linkId"`
}

type StudentDetailResponse struct {
	models.Student
	FamilyMembers []FamilyMemberResponse `json:"familyMembers"`
}

func GetStudentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var student models.Student
	if err := config.DB.Preload("GradeLevel").Preload("Section").First(&student, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	familyIDs, err := fees.FindFullFamily(config.DB, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve family"})
		return
	}

	var family []models.Student
	if err := config.DB.Where("id IN ? AND COALESCE(is_enrolled, TRUE)", familyIDs).
		Order("family_order, id").Find(&family).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load family members"})
		return
	}

	var tiers []models.SiblingDiscountTier
	var school models.School
	if config.DB.First(&school, student.SchoolID).Error == nil {
		config.DB.Where("school_id = ?", school.ResourceSchoolID()).Find(&tiers)
	}

	members := []FamilyMemberResponse{}
	for i, member := range family {
		_, percent := fees.SiblingDiscount(100, i+1, len(family)-1, tiers)

		var linkID uint
		if member.ID != student.ID {
			var link models.FamilyLink
			if err := config.DB.Where("student_id = ? AND relative_id = ?", student.ID, member.ID).
				First(&link).Error; err == nil {
				linkID = link.ID
			}
		}

		members = append(members, FamilyMemberResponse{
			Student:         member,
			DiscountPercent: percent,
			IsSelf:          member.ID == student.ID,
			LinkID:          linkID,
		})
	}

	c.JSON(http.StatusOK, StudentDetailResponse{Student: student, FamilyMembers: members})
}

func CreateStudentHandler(c *gin.Context) {
	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validGradeLevel(c, input.SchoolID, input.GradeLevelID) {
		return
	}

	student := models.Student{
		SchoolID:      input.SchoolID,
		GradeLevelID:  input.GradeLevelID,
		SectionID:     input.SectionID,
		LastName:      input.LastName,
		FirstName:     input.FirstName,
		MiddleName:    input.MiddleName,
		Gender:        input.Gender,
		Email:         input.Email,
		Phone:         input.Phone,
		GuardianName:  input.GuardianName,
		GuardianPhone: input.GuardianPhone,
		IsEnrolled:    input.IsEnrolled,
	}
	if err := config.DB.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create student"})
		return
	}
	if student.GradeLevelID != nil {
		invalidateCache(gradeStatsCacheKey(*student.GradeLevelID))
	}
	c.JSON(http.StatusCreated, student)
}

func UpdateStudentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var student models.Student
	if !firstOr404(c, &student, id, "Student") {
		return
	}

	var input StudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validGradeLevel(c, student.SchoolID, input.GradeLevelID) {
		return
	}

	if student.GradeLevelID != nil {
		invalidateCache(gradeStatsCacheKey(*student.GradeLevelID))
	}
	student.GradeLevelID = input.GradeLevelID
	student.SectionID = input.SectionID
	student.LastName = input.LastName
	student.FirstName = input.FirstName
	student.MiddleName = input.MiddleName
	student.Gender = input.Gender
	student.Email = input.Email
	student.Phone = input.Phone
	student.GuardianName = input.GuardianName
	student.GuardianPhone = input.GuardianPhone
	if input.IsEnrolled != nil {
		student.IsEnrolled = input.IsEnrolled
	}

	if err := config.DB.Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update student"})
		return
	}
	if student.GradeLevelID != nil {
		invalidateCache(gradeStatsCacheKey(*student.GradeLevelID))
	}
	c.JSON(http.StatusOK, student)
}

func DeleteStudentHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var student models.Student
	if !firstOr404(c, &student, id, "Student") {
		return
	}
	if err := config.DB.Delete(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete student"})
		return
	}
	if student.GradeLevelID != nil {
		invalidateCache(gradeStatsCacheKey(*student.GradeLevelID))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

// --- Family links ---

type FamilyLinkInput struct {
	RelativeID       uint   `json:"relativeId" binding:"required"`
	RelationshipType string `json:"relationshipType"`
}

func AddFamilyLinkHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var student models.Student
	if !firstOr404(c, &student, id, "Student") {
		return
	}

	var input FamilyLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.RelativeID == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A student cannot be linked to themselves"})
		return
	}
	var relative models.Student
	if !firstOr404(c, &relative, input.RelativeID, "Relative") {
		return
	}

	link := models.FamilyLink{
		StudentID:        id,
		RelativeID:       input.RelativeID,
		RelationshipType: input.RelationshipType,
	}
	if err := config.DB.Create(&link).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create family link"})
		return
	}
	c.JSON(http.StatusCreated, link)
}

func RemoveFamilyLinkHandler(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := config.DB.Where("student_id = ? AND id = ?", id, c.Param("linkId")).
		Delete(&models.FamilyLink{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove family link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Family link removed"})
}

// UpdateFamilyOrderHandler rewrites the sibling ordering of a family.
// The payload lists student IDs oldest first; ranks drive which child the
// sibling discount applies to.
func UpdateFamilyOrderHandler(c *gin.Context) {
	var body struct {
		StudentIDs []uint `json:"studentIds" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := config.DB.Begin()
	for i, studentID := range body.StudentIDs {
		if err := tx.Model(&models.Student{}).Where("id = ?", studentID).
			Update("family_order", i+1).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update family order"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Family order updated"})
}
