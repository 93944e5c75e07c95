// internal/core/ports/store.go
package ports

// ExtensionStore es el port para persistir el conjunto de extensiones del usuario
// entre ejecuciones.
type ExtensionStore interface {
	// Load retorna las extensiones guardadas. found es false si aún no existe nada guardado.
	Load() (exts []string, found bool, err error)

	// Save reemplaza el conjunto guardado
	Save(exts []string) error
}
