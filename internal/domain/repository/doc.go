// Package repository define los contratos de persistencia que consume el core de auth.
//
// El core no es dueño del almacenamiento de usuarios: lo lee y escribe a través de
// UserStore. Las implementaciones concretas viven en internal/store/.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────┐
//	│        auth.Manager / bootstrap / controllers       │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (UserStore)                │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	              ┌─────────┴─────────┐
//	              ▼                   ▼
//	     ┌─────────────┐     ┌─────────────┐
//	     │  store/pg   │     │ store/memory│
//	     └─────────────┘     └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro
//   - Errores de dominio están en errors.go
package repository
