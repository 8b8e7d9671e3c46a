// =============================================================================
// Portfolio Consolidation - Shared Types
// =============================================================================
//
// This package contains the shared vocabulary used across the pipeline
// stages to avoid import cycles. Types defined here are used by:
//   - loader
//   - credit
//   - arrears, sales, balance, goals, callcenter
//   - finalize
//   - pipeline
//
// Column names follow the business vocabulary of the source extracts, so the
// consolidated report reads the same way the collections team reads the
// original spreadsheets.
//
// =============================================================================

package types

import "strings"

// =============================================================================
// ENTITIES
// =============================================================================

// Entity is one of the two lending brands a credit belongs to.
type Entity string

const (
	// EntityFinansuenos is the financing brand. Its credits carry the
	// credit-type prefix "DF" and are tracked with guarantee and interest
	// balances.
	EntityFinansuenos Entity = "FINANSUEÑOS"

	// EntityArpesod is the retail-credit brand. Every credit type that is
	// not a Finansueños type belongs to it.
	EntityArpesod Entity = "ARPESOD"
)

// FinansuenosCreditType is the credit-type prefix reserved for Finansueños.
const FinansuenosCreditType = "DF"

// EntityForCreditType classifies a credit type into its entity.
// The classification is total: there is no third value.
func EntityForCreditType(creditType string) Entity {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(creditType)), FinansuenosCreditType) {
		return EntityFinansuenos
	}
	return EntityArpesod
}

// =============================================================================
// SENTINELS
// =============================================================================

const (
	SentinelNoArrears       = "SIN MORA"
	SentinelExpiredTerm     = "VIGENCIA EXPIRADA"
	SentinelNotApplicable   = "NO APLICA"
	SentinelUnassigned      = "NO ASIGNADA"
	SentinelDateError       = "ERROR DE FECHA"
	SentinelNoCodebtor      = "SIN CODEUDOR"
	SentinelNotAvailable    = "NO DISPONIBLE"
	SentinelActiveAdvisor   = "SI"
	SentinelInactiveAdvisor = "INACTIVO"
)

// =============================================================================
// CANONICAL COLUMN NAMES
// =============================================================================

// Identity.
const (
	ColCreditKey    = "Credito"
	ColCreditType   = "Tipo_Credito"
	ColCreditNumber = "Numero_Credito"
	ColEntity       = "Empresa"
	ColCitizenID    = "Cedula_Cliente"
	ColClientName   = "Nombre_Cliente"
)

// Contact and location.
const (
	ColEmail        = "Correo"
	ColPhone        = "Telefono"
	ColMobile       = "Celular"
	ColAddress      = "Direccion"
	ColNeighborhood = "Barrio"
	ColCity         = "Nombre_Ciudad"
)

// Sales.
const (
	ColInvoiceDate     = "Fecha_Facturada"
	ColSalesInvoice    = "Factura_Venta"
	ColProductName     = "Nombre_Producto"
	ColSaleTotal       = "Total_Venta"
	ColItemQty         = "Cantidad_Item"
	ColProductQty      = "Cantidad_Producto"
	ColGiftName        = "Obsequio"
	ColGiftQty         = "Cantidad_Obsequio"
	ColTotalProductQty = "Cantidad_Total_Producto"
)

// Credit details.
const (
	ColDisbursement      = "Valor_Desembolso"
	ColTotalInstallments = "Total_Cuotas"
	ColInstallmentValue  = "Valor_Cuota"
)

// Arrears.
const (
	ColArrearsDays              = "Dias_Atraso"
	ColArrearsBucket            = "Franja_Mora"
	ColPaidInstallments         = "Cuotas_Pagadas"
	ColCurrentInstallment       = "Cuota_Vigente"
	ColCurrentInstallmentDate   = "Fecha_Cuota_Vigente"
	ColCurrentInstallmentAmount = "Valor_Cuota_Vigente"
	ColFirstOverdueDate         = "Fecha_Cuota_Atraso"
	ColFirstOverdueInstallment  = "Primera_Cuota_Mora"
	ColFirstOverdueAmount       = "Valor_Cuota_Atraso"
	ColTotalOverdueAmount       = "Valor_Vencido"
)

// Balances.
const (
	ColInvoiceBalance  = "Saldo_Factura"
	ColPrincipal       = "Saldo_Capital"
	ColGuarantee       = "Saldo_Avales"
	ColCurrentInterest = "Saldo_Interes_Corriente"
	ColConcept         = "Concepto"
	ColConceptBalance  = "Saldo"
)

// Personnel.
const (
	ColZone           = "Zona"
	ColCollector      = "Cobrador"
	ColCollectorPhone = "Telefono_Cobrador"
	ColCollectorName  = "Nombre_Cobrador"
	ColRegional       = "Regional"
	ColManager        = "Gestor"
	ColManagerPhone   = "Telefono_Gestor"
	ColAdvisorCode    = "Codigo_Vendedor"
	ColAdvisorName    = "Nombre_Vendedor"
	ColAdvisorMobile  = "Movil_Vendedor"
	ColAdvisorActive  = "Vendedor_Activo"
	ColZoneLeader     = "Lider_Zona"
	ColLeaderMobile   = "Movil_Lider"
	ColCostCenter     = "Centro_Costos"
	ColCostCenterCode = "Codigo_Centro_Costos"
	ColCostCenterOn   = "Activo_Centro_Costos"
)

// Call center.
const (
	ColCallCenterSupport = "Call_Center_Apoyo"
	ColCallCenterName    = "Nombre_Call_Center"
	ColCallCenterPhone   = "Telefono_Call_Center"
)

// Goals.
const (
	ColGoalInterest        = "Meta_Intereses"
	ColGoalOnTime          = "Meta_DC_Al_Dia"
	ColGoalOverdue         = "Meta_DC_Atraso"
	ColGoalArrears         = "Meta_Atraso"
	ColGeneralGoal         = "Meta_General"
	ColBucketGoalPercent   = "Meta_%"
	ColBucketGoalAmount    = "Meta_$"
	ColCollectionPercent   = "Meta_T.R_%"
	ColCollectionAmount    = "Meta_T.R_$"
	ColZoneGoal1To30       = "Meta_1_A_30"
	ColZoneGoal31To90      = "Meta_31_A_90"
	ColZoneGoal91To180     = "Meta_91_A_180"
	ColZoneGoal181To360    = "Meta_181_A_360"
	ColZoneCollectionTotal = "Total_Recaudo"
)

// Codebtors.
const (
	ColCodebtor1      = "Codeudor1"
	ColCodebtor1Name  = "Nombre_Codeudor1"
	ColCodebtor1Phone = "Telefono_Codeudor1"
	ColCodebtor1City  = "Ciudad_Codeudor1"
	ColCodebtor2      = "Codeudor2"
	ColCodebtor2Name  = "Nombre_Codeudor2"
	ColCodebtor2Phone = "Telefono_Codeudor2"
	ColCodebtor2City  = "Ciudad_Codeudor2"
)

// CanonicalColumnOrder is the declared column sequence of the consolidated
// report. Columns not listed here are appended after these, in the order
// they appeared in the working table.
func CanonicalColumnOrder() []string {
	return []string{
		ColEntity, ColCreditType, ColCreditNumber, ColCreditKey,
		ColInvoiceDate, ColSalesInvoice,
		ColProductName, ColProductQty, ColGiftName, ColGiftQty, ColTotalProductQty,
		ColCitizenID, ColClientName, ColEmail, ColPhone, ColMobile,
		ColAddress, ColNeighborhood, ColCity,
		ColZone, ColCollector, ColCollectorPhone, ColCollectorName,
		ColCallCenterSupport, ColCallCenterName, ColCallCenterPhone,
		ColRegional,
		ColAdvisorCode, ColAdvisorName, ColAdvisorActive, ColAdvisorMobile,
		ColZoneLeader, ColLeaderMobile, ColManager, ColManagerPhone,
		ColCostCenterCode, ColCostCenter, ColCostCenterOn,
		ColCodebtor1, ColCodebtor1Name, ColCodebtor1Phone, ColCodebtor1City,
		ColCodebtor2, ColCodebtor2Name, ColCodebtor2Phone, ColCodebtor2City,
		ColDisbursement, ColTotalInstallments, ColInstallmentValue,
		ColArrearsDays, ColArrearsBucket,
		ColPrincipal, ColCurrentInterest, ColGuarantee,
		ColGoalInterest, ColGeneralGoal,
		ColBucketGoalPercent, ColBucketGoalAmount,
		ColCollectionPercent, ColCollectionAmount,
		ColPaidInstallments,
		ColCurrentInstallment, ColCurrentInstallmentDate, ColCurrentInstallmentAmount,
		ColFirstOverdueDate, ColFirstOverdueInstallment, ColFirstOverdueAmount,
		ColTotalOverdueAmount,
		ColGoalOnTime, ColGoalOverdue, ColGoalArrears,
	}
}
