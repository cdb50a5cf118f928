package api

import (
	"net/http"

	"plateful/mealplan-app/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	recipeService service.RecipeService,
	planService service.MealPlanService,
	shoppingService service.ShoppingListService,
	chatService service.ChatService,
) {

	authHandler := NewAuthHandler(authService)
	recipeHandler := NewRecipeHandler(recipeService)
	libraryHandler := NewLibraryHandler(recipeService)
	planHandler := NewMealPlanHandler(planService)
	shoppingHandler := NewShoppingHandler(shoppingService)
	chatHandler := NewChatHandler(chatService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userID, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"user_id": userID.Hex()})
		})

		// --- Recipe Routes ---
		recipeGroup := protected.Group("/recipes")
		{
			recipeGroup.POST("", recipeHandler.CreateRecipe)
			recipeGroup.GET("", recipeHandler.GetMyRecipes)
			recipeGroup.GET("/:recipeId", recipeHandler.GetRecipeByID)
			recipeGroup.PUT("/:recipeId", recipeHandler.UpdateRecipe)
			recipeGroup.DELETE("/:recipeId", recipeHandler.DeleteRecipe)

			// Photo upload round trip: request a presigned PUT URL,
			// upload directly to S3, then confirm.
			recipeGroup.POST("/:recipeId/image/upload-url", recipeHandler.RequestImageUpload)
			recipeGroup.POST("/:recipeId/image/confirm", recipeHandler.ConfirmImageUpload)
			recipeGroup.GET("/:recipeId/image", recipeHandler.GetImageURL)

			// Per-recipe assistant conversation.
			recipeGroup.GET("/:recipeId/chat", chatHandler.ListMessages)
			recipeGroup.POST("/:recipeId/chat", chatHandler.SendMessage)
		}

		// --- Library Routes ---
		libraryGroup := protected.Group("/libraries")
		{
			libraryGroup.POST("", libraryHandler.CreateLibrary)
			libraryGroup.GET("", libraryHandler.GetMyLibraries)
			libraryGroup.POST("/:libraryId/recipes", libraryHandler.AddRecipe)
			libraryGroup.DELETE("/:libraryId/recipes/:recipeId", libraryHandler.RemoveRecipe)
			libraryGroup.DELETE("/:libraryId", libraryHandler.DeleteLibrary)
		}

		// --- Meal Plan Routes ---
		planGroup := protected.Group("/meal-plans")
		{
			// GET /meal-plans/current and GET /meal-plans?week_start=YYYY-MM-DD
			// are both get-or-create: an empty plan materializes on first view.
			planGroup.GET("/current", planHandler.GetCurrentPlan)
			planGroup.GET("", planHandler.GetPlanForWeek)
			planGroup.PUT("/:planId/entries", planHandler.AssignEntry)
			planGroup.DELETE("/:planId/entries/:entryId", planHandler.RemoveEntry)
		}

		// --- Shopping List Routes ---
		shoppingGroup := protected.Group("/shopping-lists")
		{
			shoppingGroup.POST("/generate", shoppingHandler.GenerateList)
			shoppingGroup.GET("", shoppingHandler.GetMyLists)
			shoppingGroup.GET("/:listId", shoppingHandler.GetList)
			shoppingGroup.PATCH("/:listId/items/:itemId", shoppingHandler.CheckItem)
			shoppingGroup.DELETE("/:listId", shoppingHandler.DeleteList)
		}

		// --- Proposal Routes ---
		proposalGroup := protected.Group("/chat/proposals")
		{
			proposalGroup.POST("/:proposalId/confirm", chatHandler.ConfirmProposal)
			proposalGroup.POST("/:proposalId/reject", chatHandler.RejectProposal)
		}
	}
}
