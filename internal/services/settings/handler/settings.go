package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"vistara-hms/internal/database/models"
	"vistara-hms/internal/utils"

	resthandler "vistara-hms/internal/services/restaurant/handler"
)

// SettingsHandler owns the admin master data: branches, taxes, the
// restaurant floor (tables, categories, dishes) and the hotel floor
// (room types, rooms). Tables and rooms get their QR tokens here, at
// creation, and keep them for life.
type SettingsHandler struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewSettingsHandler(db *gorm.DB, redisClient *redis.Client) *SettingsHandler {
	return &SettingsHandler{db: db, redis: redisClient}
}

func (h *SettingsHandler) invalidateMenu(c *gin.Context, branchID int64) {
	ctx := c.Request.Context()
	_ = h.redis.Del(ctx, resthandler.MENU_CACHE_KEY)
	_ = h.redis.Del(ctx, resthandler.RESTAURANT_CACHE_PREFIX+strconv.FormatInt(branchID, 10))
}

// --- Branches ---

type BranchRequest struct {
	BranchCode string  `json:"branch_code" binding:"required"`
	BranchName string  `json:"branch_name" binding:"required"`
	Address    *string `json:"address,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
}

func (h *SettingsHandler) ListBranches(c *gin.Context) {
	var branches []models.Branch
	if err := h.db.Order("branch_name asc").Find(&branches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Branches", branches))
}

func (h *SettingsHandler) CreateBranch(c *gin.Context) {
	var req BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	branch := models.Branch{
		BranchCode: req.BranchCode,
		BranchName: req.BranchName,
		Address:    req.Address,
		Phone:      req.Phone,
		Email:      req.Email,
		IsActive:   true,
	}
	if err := h.db.Create(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create branch: "+err.Error()))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Branch created", branch))
}

func (h *SettingsHandler) UpdateBranch(c *gin.Context) {
	branchID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid branch id"))
		return
	}

	var req struct {
		BranchName *string `json:"branch_name,omitempty"`
		Address    *string `json:"address,omitempty"`
		Phone      *string `json:"phone,omitempty"`
		Email      *string `json:"email,omitempty"`
		IsActive   *bool   `json:"is_active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var branch models.Branch
	if err := h.db.Where("id = ?", branchID).First(&branch).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Branch not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.BranchName != nil {
		branch.BranchName = *req.BranchName
	}
	if req.Address != nil {
		branch.Address = req.Address
	}
	if req.Phone != nil {
		branch.Phone = req.Phone
	}
	if req.Email != nil {
		branch.Email = req.Email
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := h.db.Save(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update branch"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Branch updated", branch))
}

// --- Taxes ---

type TaxRequest struct {
	TaxName  string `json:"tax_name" binding:"required"`
	Rate     string `json:"rate" binding:"required"`
	BranchID *int64 `json:"branch_id,omitempty"`
}

func (h *SettingsHandler) ListTaxes(c *gin.Context) {
	var taxes []models.Tax
	query := h.db.Model(&models.Tax{})
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ? OR branch_id IS NULL", branchID)
	}
	if err := query.Order("tax_name asc").Find(&taxes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Taxes", taxes))
}

func (h *SettingsHandler) CreateTax(c *gin.Context) {
	var req TaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	tax := models.Tax{
		TaxName:  req.TaxName,
		Rate:     req.Rate,
		BranchID: req.BranchID,
		IsActive: true,
	}
	if err := h.db.Create(&tax).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create tax"))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Tax created", tax))
}

func (h *SettingsHandler) UpdateTax(c *gin.Context) {
	taxID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid tax id"))
		return
	}

	var req struct {
		TaxName  *string `json:"tax_name,omitempty"`
		Rate     *string `json:"rate,omitempty"`
		IsActive *bool   `json:"is_active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var tax models.Tax
	if err := h.db.Where("id = ?", taxID).First(&tax).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Tax not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.TaxName != nil {
		tax.TaxName = *req.TaxName
	}
	if req.Rate != nil {
		tax.Rate = *req.Rate
	}
	if req.IsActive != nil {
		tax.IsActive = *req.IsActive
	}

	if err := h.db.Save(&tax).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update tax"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Tax updated", tax))
}

// --- Restaurant tables ---

type TableRequest struct {
	BranchID    int64  `json:"branch_id" binding:"required"`
	TableNumber string `json:"table_number" binding:"required"`
	Capacity    int32  `json:"capacity" binding:"required,gt=0"`
}

type BulkTablesRequest struct {
	Tables []TableRequest `json:"tables" binding:"required,min=1,dive"`
}

func (h *SettingsHandler) ListTables(c *gin.Context) {
	var tables []models.RestaurantTable
	query := h.db.Model(&models.RestaurantTable{})
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if err := query.Order("table_number asc").Find(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Tables", tables))
}

func (h *SettingsHandler) CreateTable(c *gin.Context) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	table := models.RestaurantTable{
		BranchID:    req.BranchID,
		TableNumber: req.TableNumber,
		Capacity:    req.Capacity,
		Status:      resthandler.TableStatusOpen,
		QrToken:     utils.QRToken(),
		IsActive:    true,
	}
	if err := h.db.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create table"))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Table created", table))
}

func (h *SettingsHandler) BulkCreateTables(c *gin.Context) {
	var req BulkTablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	tables := make([]models.RestaurantTable, 0, len(req.Tables))
	for _, t := range req.Tables {
		tables = append(tables, models.RestaurantTable{
			BranchID:    t.BranchID,
			TableNumber: t.TableNumber,
			Capacity:    t.Capacity,
			Status:      resthandler.TableStatusOpen,
			QrToken:     utils.QRToken(),
			IsActive:    true,
		})
	}

	if err := h.db.Create(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create tables"))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Tables created", tables))
}

func (h *SettingsHandler) UpdateTable(c *gin.Context) {
	tableID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid table id"))
		return
	}

	var req struct {
		TableNumber *string `json:"table_number,omitempty"`
		Capacity    *int32  `json:"capacity,omitempty"`
		IsActive    *bool   `json:"is_active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var table models.RestaurantTable
	if err := h.db.Where("id = ?", tableID).First(&table).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Table not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.TableNumber != nil {
		table.TableNumber = *req.TableNumber
	}
	if req.Capacity != nil {
		table.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		table.IsActive = *req.IsActive
	}

	if err := h.db.Save(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update table"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Table updated", table))
}

// --- Menu categories ---

type CategoryRequest struct {
	BranchID     int64  `json:"branch_id" binding:"required"`
	CategoryName string `json:"category_name" binding:"required"`
	SortOrder    int32  `json:"sort_order"`
}

type BulkCategoriesRequest struct {
	Categories []CategoryRequest `json:"categories" binding:"required,min=1,dive"`
}

func (h *SettingsHandler) ListCategories(c *gin.Context) {
	var categories []models.MenuCategory
	query := h.db.Model(&models.MenuCategory{}).Preload("Dishes")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if err := query.Order("sort_order asc, category_name asc").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Categories", categories))
}

func (h *SettingsHandler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	category := models.MenuCategory{
		BranchID:     req.BranchID,
		CategoryName: req.CategoryName,
		SortOrder:    req.SortOrder,
		IsActive:     true,
	}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create category"))
		return
	}

	h.invalidateMenu(c, req.BranchID)
	c.JSON(http.StatusCreated, utils.SuccessResponse("Category created", category))
}

func (h *SettingsHandler) BulkCreateCategories(c *gin.Context) {
	var req BulkCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	categories := make([]models.MenuCategory, 0, len(req.Categories))
	for _, cat := range req.Categories {
		categories = append(categories, models.MenuCategory{
			BranchID:     cat.BranchID,
			CategoryName: cat.CategoryName,
			SortOrder:    cat.SortOrder,
			IsActive:     true,
		})
	}

	if err := h.db.Create(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create categories"))
		return
	}

	h.invalidateMenu(c, req.Categories[0].BranchID)
	c.JSON(http.StatusCreated, utils.SuccessResponse("Categories created", categories))
}

func (h *SettingsHandler) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid category id"))
		return
	}

	var req struct {
		CategoryName *string `json:"category_name,omitempty"`
		SortOrder    *int32  `json:"sort_order,omitempty"`
		IsActive     *bool   `json:"is_active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var category models.MenuCategory
	if err := h.db.Where("id = ?", categoryID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Category not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.CategoryName != nil {
		category.CategoryName = *req.CategoryName
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := h.db.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update category"))
		return
	}

	h.invalidateMenu(c, category.BranchID)
	c.JSON(http.StatusOK, utils.SuccessResponse("Category updated", category))
}

// --- Dishes ---

type DishRequest struct {
	BranchID    int64   `json:"branch_id" binding:"required"`
	CategoryID  int32   `json:"category_id" binding:"required"`
	DishName    string  `json:"dish_name" binding:"required"`
	Price       string  `json:"price" binding:"required"`
	Description *string `json:"description,omitempty"`
	ImageUrl    *string `json:"image_url,omitempty"`
}

type BulkDishesRequest struct {
	Dishes []DishRequest `json:"dishes" binding:"required,min=1,dive"`
}

func (h *SettingsHandler) ListDishes(c *gin.Context) {
	var dishes []models.Dish
	query := h.db.Model(&models.Dish{}).Preload("Category")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Order("dish_name asc").Find(&dishes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Dishes", dishes))
}

func (h *SettingsHandler) CreateDish(c *gin.Context) {
	var req DishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	dish := models.Dish{
		BranchID:    req.BranchID,
		CategoryID:  req.CategoryID,
		DishName:    req.DishName,
		Price:       req.Price,
		Description: req.Description,
		ImageUrl:    req.ImageUrl,
		IsAvailable: true,
	}
	if err := h.db.Create(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create dish"))
		return
	}

	h.invalidateMenu(c, req.BranchID)
	c.JSON(http.StatusCreated, utils.SuccessResponse("Dish created", dish))
}

func (h *SettingsHandler) BulkCreateDishes(c *gin.Context) {
	var req BulkDishesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	dishes := make([]models.Dish, 0, len(req.Dishes))
	for _, d := range req.Dishes {
		dishes = append(dishes, models.Dish{
			BranchID:    d.BranchID,
			CategoryID:  d.CategoryID,
			DishName:    d.DishName,
			Price:       d.Price,
			Description: d.Description,
			ImageUrl:    d.ImageUrl,
			IsAvailable: true,
		})
	}

	if err := h.db.Create(&dishes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create dishes"))
		return
	}

	h.invalidateMenu(c, req.Dishes[0].BranchID)
	c.JSON(http.StatusCreated, utils.SuccessResponse("Dishes created", dishes))
}

func (h *SettingsHandler) UpdateDish(c *gin.Context) {
	dishID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid dish id"))
		return
	}

	var req struct {
		DishName    *string `json:"dish_name,omitempty"`
		Price       *string `json:"price,omitempty"`
		CategoryID  *int32  `json:"category_id,omitempty"`
		Description *string `json:"description,omitempty"`
		ImageUrl    *string `json:"image_url,omitempty"`
		IsAvailable *bool   `json:"is_available,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var dish models.Dish
	if err := h.db.Where("id = ?", dishID).First(&dish).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Dish not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.DishName != nil {
		dish.DishName = *req.DishName
	}
	if req.Price != nil {
		dish.Price = *req.Price
	}
	if req.CategoryID != nil {
		dish.CategoryID = *req.CategoryID
	}
	if req.Description != nil {
		dish.Description = req.Description
	}
	if req.ImageUrl != nil {
		dish.ImageUrl = req.ImageUrl
	}
	if req.IsAvailable != nil {
		dish.IsAvailable = *req.IsAvailable
	}

	if err := h.db.Save(&dish).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update dish"))
		return
	}

	h.invalidateMenu(c, dish.BranchID)
	c.JSON(http.StatusOK, utils.SuccessResponse("Dish updated", dish))
}

// --- Room types ---

type RoomTypeRequest struct {
	BranchID     int64   `json:"branch_id" binding:"required"`
	TypeName     string  `json:"type_name" binding:"required"`
	BaseRate     string  `json:"base_rate" binding:"required"`
	MaxOccupancy int32   `json:"max_occupancy" binding:"required,gt=0"`
	Description  *string `json:"description,omitempty"`
}

func (h *SettingsHandler) ListRoomTypes(c *gin.Context) {
	var types []models.RoomType
	query := h.db.Model(&models.RoomType{})
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if err := query.Order("type_name asc").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Room types", types))
}

func (h *SettingsHandler) CreateRoomType(c *gin.Context) {
	var req RoomTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	roomType := models.RoomType{
		BranchID:     req.BranchID,
		TypeName:     req.TypeName,
		BaseRate:     req.BaseRate,
		MaxOccupancy: req.MaxOccupancy,
		Description:  req.Description,
		IsActive:     true,
	}
	if err := h.db.Create(&roomType).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create room type"))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Room type created", roomType))
}

func (h *SettingsHandler) UpdateRoomType(c *gin.Context) {
	typeID, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid room type id"))
		return
	}

	var req struct {
		TypeName     *string `json:"type_name,omitempty"`
		BaseRate     *string `json:"base_rate,omitempty"`
		MaxOccupancy *int32  `json:"max_occupancy,omitempty"`
		Description  *string `json:"description,omitempty"`
		IsActive     *bool   `json:"is_active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var roomType models.RoomType
	if err := h.db.Where("id = ?", typeID).First(&roomType).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Room type not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.TypeName != nil {
		roomType.TypeName = *req.TypeName
	}
	if req.BaseRate != nil {
		roomType.BaseRate = *req.BaseRate
	}
	if req.MaxOccupancy != nil {
		roomType.MaxOccupancy = *req.MaxOccupancy
	}
	if req.Description != nil {
		roomType.Description = req.Description
	}
	if req.IsActive != nil {
		roomType.IsActive = *req.IsActive
	}

	if err := h.db.Save(&roomType).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update room type"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Room type updated", roomType))
}

// --- Rooms ---

type RoomRequest struct {
	BranchID   int64  `json:"branch_id" binding:"required"`
	RoomTypeID int32  `json:"room_type_id" binding:"required"`
	RoomNumber string `json:"room_number" binding:"required"`
	Floor      *int32 `json:"floor,omitempty"`
}

func (h *SettingsHandler) ListRooms(c *gin.Context) {
	var rooms []models.Room
	query := h.db.Model(&models.Room{}).Preload("RoomType")
	if branchID := c.Query("branch_id"); branchID != "" {
		query = query.Where("branch_id = ?", branchID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("room_number asc").Find(&rooms).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Rooms", rooms))
}

func (h *SettingsHandler) CreateRoom(c *gin.Context) {
	var req RoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	room := models.Room{
		BranchID:   req.BranchID,
		RoomTypeID: req.RoomTypeID,
		RoomNumber: req.RoomNumber,
		Floor:      req.Floor,
		Status:     "available",
		QrToken:    utils.QRToken(),
		IsActive:   true,
	}
	if err := h.db.Create(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to create room"))
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Room created", room))
}

// UpdateRoom covers admin edits including the housekeeping status
// moves (cleaning done, maintenance on and off).
func (h *SettingsHandler) UpdateRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid room id"))
		return
	}

	var req struct {
		RoomNumber *string `json:"room_number,omitempty"`
		RoomTypeID *int32  `json:"room_type_id,omitempty"`
		Floor      *int32  `json:"floor,omitempty"`
		Status     *string `json:"status,omitempty" binding:"omitempty,oneof=available occupied cleaning maintenance"`
		IsActive   *bool   `json:"is_active,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid request format"))
		return
	}

	var room models.Room
	if err := h.db.Where("id = ?", roomID).First(&room).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, utils.ErrorResponse("Room not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Database error"))
		return
	}

	if req.RoomNumber != nil {
		room.RoomNumber = *req.RoomNumber
	}
	if req.RoomTypeID != nil {
		room.RoomTypeID = *req.RoomTypeID
	}
	if req.Floor != nil {
		room.Floor = req.Floor
	}
	if req.Status != nil {
		room.Status = *req.Status
	}
	if req.IsActive != nil {
		room.IsActive = *req.IsActive
	}

	if err := h.db.Save(&room).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("Failed to update room"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Room updated", room))
}
