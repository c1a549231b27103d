package common

// User-facing messages that are part of the public API contract. The client
// matches some of them verbatim, so they are not translated.
const (
	MsgUnknown          = "Error desconocido"
	MsgUnauthorized     = "No autorizado"
	MsgForbidden        = "Forbidden"
	MsgUploadFailed     = "Falló la subida de imagen: %s"
	MsgMissingFields    = "Faltan campos requeridos"
	MsgMissingTitle     = "El título es obligatorio"
	MsgMissingRecipeID  = "Falta el ID de la receta"
	MsgInvalidID        = "Identificador inválido"
	MsgInvalidPage      = "Parámetros de paginación inválidos"
	MsgRecipeNotFound   = "Receta no encontrada"
	MsgCommentNotFound  = "Comentario no encontrado"
	MsgNotRecipeOwner   = "No tienes permiso para modificar esta receta"
	MsgInvalidJSONField = "Formato inválido en el campo %s"
	MsgInvalidStars     = "La calificación debe estar entre 1 y 5"
	MsgNotAnImage       = "El archivo debe ser una imagen"
	MsgImageTooLarge    = "La imagen supera el tamaño máximo de %s"
	MsgTooManyRequests  = "Demasiadas solicitudes, intenta más tarde"
	MsgCreateRecipe     = "Error al crear la receta: %s"
	MsgUpdateRecipe     = "Error al actualizar la receta: %s"
	MsgDeleteRecipe     = "Error al eliminar la receta: %s"
	MsgSaveIngredients  = "Error al guardar los ingredientes: %s"
	MsgSaveSteps        = "Error al guardar los pasos: %s"
	MsgSaveNutrition    = "Error al guardar la información nutricional: %s"
	MsgSaveTags         = "Error al guardar las etiquetas: %s"
	MsgCreateComment    = "Error al crear el comentario: %s"
	MsgDeleteComment    = "Error al eliminar el comentario: %s"
	MsgLoadData         = "Error al obtener los datos: %s"
	MsgSaveRating       = "Error al guardar la calificación: %s"
	MsgSaveFavorite     = "Error al actualizar favoritos: %s"
	MsgProfileSync      = "Error al sincronizar el perfil: %s"
)
