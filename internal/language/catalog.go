package language

// Message keys shown by clients after pipeline steps.
const (
	MsgProcessingLink  = "processingLink"
	MsgLinkCleaned     = "linkCleaned"
	MsgCopySuccess     = "copySuccess"
	MsgCopyFailed      = "copyFailed"
	MsgProcessingError = "processingError"
	MsgInvalidLink     = "invalidLink"
	MsgLinkOpened      = "linkOpened"
	MsgInputCleared    = "inputCleared"
)

// Catalog holds translated messages per language.
type Catalog map[Code]map[string]string

// Text returns the message for key in lang, falling back to English and then to
// the key itself.
func (c Catalog) Text(lang Code, key string) string {
	if msg, ok := c[lang][key]; ok && msg != "" {
		return msg
	}

	if msg, ok := c[Default][key]; ok && msg != "" {
		return msg
	}

	return key
}

// DefaultCatalog is the built-in message set.
var DefaultCatalog = Catalog{
	English: {
		MsgProcessingLink:  "Processing TikTok link...",
		MsgLinkCleaned:     "Link cleaned successfully.",
		MsgCopySuccess:     "Link copied to clipboard",
		MsgCopyFailed:      "Failed to copy to clipboard",
		MsgProcessingError: "Error processing the link.",
		MsgInvalidLink:     "The link is not a valid TikTok URL from the share button.",
		MsgLinkOpened:      "Link opened in new tab",
		MsgInputCleared:    "Input field cleared",
	},
	Spanish: {
		MsgProcessingLink:  "Procesando enlace de TikTok...",
		MsgLinkCleaned:     "Enlace limpiado correctamente.",
		MsgCopySuccess:     "Enlace copiado al portapapeles",
		MsgCopyFailed:      "No se pudo copiar al portapapeles",
		MsgProcessingError: "Error al procesar el enlace.",
		MsgInvalidLink:     "El enlace no es una URL válida de TikTok del botón de compartir.",
		MsgLinkOpened:      "Enlace abierto en una nueva pestaña",
		MsgInputCleared:    "Campo de entrada borrado",
	},
	French: {
		MsgProcessingLink:  "Traitement du lien TikTok...",
		MsgLinkCleaned:     "Lien nettoyé avec succès.",
		MsgCopySuccess:     "Lien copié dans le presse-papiers",
		MsgCopyFailed:      "Échec de la copie dans le presse-papiers",
		MsgProcessingError: "Erreur lors du traitement du lien.",
		MsgInvalidLink:     "Le lien n'est pas une URL TikTok valide issue du bouton de partage.",
		MsgLinkOpened:      "Lien ouvert dans un nouvel onglet",
		MsgInputCleared:    "Champ de saisie effacé",
	},
	Italian: {
		MsgProcessingLink:  "Elaborazione del link TikTok...",
		MsgLinkCleaned:     "Link pulito con successo.",
		MsgCopySuccess:     "Link copiato negli appunti",
		MsgCopyFailed:      "Impossibile copiare negli appunti",
		MsgProcessingError: "Errore durante l'elaborazione del link.",
		MsgInvalidLink:     "Il link non è un URL TikTok valido dal pulsante di condivisione.",
		MsgLinkOpened:      "Link aperto in una nuova scheda",
		MsgInputCleared:    "Campo di inserimento svuotato",
	},
	German: {
		MsgProcessingLink:  "TikTok-Link wird verarbeitet...",
		MsgLinkCleaned:     "Link erfolgreich bereinigt.",
		MsgCopySuccess:     "Link in die Zwischenablage kopiert",
		MsgCopyFailed:      "Kopieren in die Zwischenablage fehlgeschlagen",
		MsgProcessingError: "Fehler beim Verarbeiten des Links.",
		MsgInvalidLink:     "Der Link ist keine gültige TikTok-URL aus der Teilen-Schaltfläche.",
		MsgLinkOpened:      "Link in neuem Tab geöffnet",
		MsgInputCleared:    "Eingabefeld geleert",
	},
}
