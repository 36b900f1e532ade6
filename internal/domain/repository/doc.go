// Package repository define entidades y contratos de persistencia.
//
// Las implementaciones viven en internal/store/{memory,sqlite,pg}. Los
// servicios dependen sólo de estas interfaces.
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Not found y duplicados se reportan con ErrNotFound / ErrConflict
//   - Códigos y refresh tokens se guardan hasheados (SHA-256 base64url)
package repository
