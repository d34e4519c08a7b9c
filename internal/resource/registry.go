package resource

import (
	"reflect"
	"sort"

	"github.com/samply/golang-fhir-models/fhir-models/fhir"
)

// R4ResourcePrefix is the qualified-name prefix of the R4 model package.
// Resource types are resolved by name as R4ResourcePrefix + "Patient".
const R4ResourcePrefix = "github.com/samply/golang-fhir-models/fhir-models/fhir."

// unknownCode is what fhir.ResourceType.Code returns past the last value
const unknownCode = "<unknown>"

// abstractResourceTypes are enum codes with no constructible model
var abstractResourceTypes = map[string]bool{
	"Resource":       true,
	"DomainResource": true,
}

// Kind is a registered resource kind.
type Kind struct {
	Name         string
	Type         reflect.Type
	ResourceType fhir.ResourceType
}

// New returns a blank *fhir.X for the kind.
func (k Kind) New() any {
	return reflect.New(k.Type).Interface()
}

// modelTypes lists the model struct of every concrete R4 resource type.
var modelTypes = []reflect.Type{
	reflect.TypeOf((*fhir.Account)(nil)).Elem(),
	reflect.TypeOf((*fhir.ActivityDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.AdverseEvent)(nil)).Elem(),
	reflect.TypeOf((*fhir.AllergyIntolerance)(nil)).Elem(),
	reflect.TypeOf((*fhir.Appointment)(nil)).Elem(),
	reflect.TypeOf((*fhir.AppointmentResponse)(nil)).Elem(),
	reflect.TypeOf((*fhir.AuditEvent)(nil)).Elem(),
	reflect.TypeOf((*fhir.Basic)(nil)).Elem(),
	reflect.TypeOf((*fhir.Binary)(nil)).Elem(),
	reflect.TypeOf((*fhir.BiologicallyDerivedProduct)(nil)).Elem(),
	reflect.TypeOf((*fhir.BodyStructure)(nil)).Elem(),
	reflect.TypeOf((*fhir.Bundle)(nil)).Elem(),
	reflect.TypeOf((*fhir.CapabilityStatement)(nil)).Elem(),
	reflect.TypeOf((*fhir.CarePlan)(nil)).Elem(),
	reflect.TypeOf((*fhir.CareTeam)(nil)).Elem(),
	reflect.TypeOf((*fhir.CatalogEntry)(nil)).Elem(),
	reflect.TypeOf((*fhir.ChargeItem)(nil)).Elem(),
	reflect.TypeOf((*fhir.ChargeItemDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.Claim)(nil)).Elem(),
	reflect.TypeOf((*fhir.ClaimResponse)(nil)).Elem(),
	reflect.TypeOf((*fhir.ClinicalImpression)(nil)).Elem(),
	reflect.TypeOf((*fhir.CodeSystem)(nil)).Elem(),
	reflect.TypeOf((*fhir.Communication)(nil)).Elem(),
	reflect.TypeOf((*fhir.CommunicationRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.CompartmentDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.Composition)(nil)).Elem(),
	reflect.TypeOf((*fhir.ConceptMap)(nil)).Elem(),
	reflect.TypeOf((*fhir.Condition)(nil)).Elem(),
	reflect.TypeOf((*fhir.Consent)(nil)).Elem(),
	reflect.TypeOf((*fhir.Contract)(nil)).Elem(),
	reflect.TypeOf((*fhir.Coverage)(nil)).Elem(),
	reflect.TypeOf((*fhir.CoverageEligibilityRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.CoverageEligibilityResponse)(nil)).Elem(),
	reflect.TypeOf((*fhir.DetectedIssue)(nil)).Elem(),
	reflect.TypeOf((*fhir.Device)(nil)).Elem(),
	reflect.TypeOf((*fhir.DeviceDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.DeviceMetric)(nil)).Elem(),
	reflect.TypeOf((*fhir.DeviceRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.DeviceUseStatement)(nil)).Elem(),
	reflect.TypeOf((*fhir.DiagnosticReport)(nil)).Elem(),
	reflect.TypeOf((*fhir.DocumentManifest)(nil)).Elem(),
	reflect.TypeOf((*fhir.DocumentReference)(nil)).Elem(),
	reflect.TypeOf((*fhir.EffectEvidenceSynthesis)(nil)).Elem(),
	reflect.TypeOf((*fhir.Encounter)(nil)).Elem(),
	reflect.TypeOf((*fhir.Endpoint)(nil)).Elem(),
	reflect.TypeOf((*fhir.EnrollmentRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.EnrollmentResponse)(nil)).Elem(),
	reflect.TypeOf((*fhir.EpisodeOfCare)(nil)).Elem(),
	reflect.TypeOf((*fhir.EventDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.Evidence)(nil)).Elem(),
	reflect.TypeOf((*fhir.EvidenceVariable)(nil)).Elem(),
	reflect.TypeOf((*fhir.ExampleScenario)(nil)).Elem(),
	reflect.TypeOf((*fhir.ExplanationOfBenefit)(nil)).Elem(),
	reflect.TypeOf((*fhir.FamilyMemberHistory)(nil)).Elem(),
	reflect.TypeOf((*fhir.Flag)(nil)).Elem(),
	reflect.TypeOf((*fhir.Goal)(nil)).Elem(),
	reflect.TypeOf((*fhir.GraphDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.Group)(nil)).Elem(),
	reflect.TypeOf((*fhir.GuidanceResponse)(nil)).Elem(),
	reflect.TypeOf((*fhir.HealthcareService)(nil)).Elem(),
	reflect.TypeOf((*fhir.ImagingStudy)(nil)).Elem(),
	reflect.TypeOf((*fhir.Immunization)(nil)).Elem(),
	reflect.TypeOf((*fhir.ImmunizationEvaluation)(nil)).Elem(),
	reflect.TypeOf((*fhir.ImmunizationRecommendation)(nil)).Elem(),
	reflect.TypeOf((*fhir.ImplementationGuide)(nil)).Elem(),
	reflect.TypeOf((*fhir.InsurancePlan)(nil)).Elem(),
	reflect.TypeOf((*fhir.Invoice)(nil)).Elem(),
	reflect.TypeOf((*fhir.Library)(nil)).Elem(),
	reflect.TypeOf((*fhir.Linkage)(nil)).Elem(),
	reflect.TypeOf((*fhir.List)(nil)).Elem(),
	reflect.TypeOf((*fhir.Location)(nil)).Elem(),
	reflect.TypeOf((*fhir.Measure)(nil)).Elem(),
	reflect.TypeOf((*fhir.MeasureReport)(nil)).Elem(),
	reflect.TypeOf((*fhir.Media)(nil)).Elem(),
	reflect.TypeOf((*fhir.Medication)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicationAdministration)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicationDispense)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicationKnowledge)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicationRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicationStatement)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProduct)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductAuthorization)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductContraindication)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductIndication)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductIngredient)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductInteraction)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductManufactured)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductPackaged)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductPharmaceutical)(nil)).Elem(),
	reflect.TypeOf((*fhir.MedicinalProductUndesirableEffect)(nil)).Elem(),
	reflect.TypeOf((*fhir.MessageDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.MessageHeader)(nil)).Elem(),
	reflect.TypeOf((*fhir.MolecularSequence)(nil)).Elem(),
	reflect.TypeOf((*fhir.NamingSystem)(nil)).Elem(),
	reflect.TypeOf((*fhir.NutritionOrder)(nil)).Elem(),
	reflect.TypeOf((*fhir.Observation)(nil)).Elem(),
	reflect.TypeOf((*fhir.ObservationDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.OperationDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.OperationOutcome)(nil)).Elem(),
	reflect.TypeOf((*fhir.Organization)(nil)).Elem(),
	reflect.TypeOf((*fhir.OrganizationAffiliation)(nil)).Elem(),
	reflect.TypeOf((*fhir.Parameters)(nil)).Elem(),
	reflect.TypeOf((*fhir.Patient)(nil)).Elem(),
	reflect.TypeOf((*fhir.PaymentNotice)(nil)).Elem(),
	reflect.TypeOf((*fhir.PaymentReconciliation)(nil)).Elem(),
	reflect.TypeOf((*fhir.Person)(nil)).Elem(),
	reflect.TypeOf((*fhir.PlanDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.Practitioner)(nil)).Elem(),
	reflect.TypeOf((*fhir.PractitionerRole)(nil)).Elem(),
	reflect.TypeOf((*fhir.Procedure)(nil)).Elem(),
	reflect.TypeOf((*fhir.Provenance)(nil)).Elem(),
	reflect.TypeOf((*fhir.Questionnaire)(nil)).Elem(),
	reflect.TypeOf((*fhir.QuestionnaireResponse)(nil)).Elem(),
	reflect.TypeOf((*fhir.RelatedPerson)(nil)).Elem(),
	reflect.TypeOf((*fhir.RequestGroup)(nil)).Elem(),
	reflect.TypeOf((*fhir.ResearchDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.ResearchElementDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.ResearchStudy)(nil)).Elem(),
	reflect.TypeOf((*fhir.ResearchSubject)(nil)).Elem(),
	reflect.TypeOf((*fhir.RiskAssessment)(nil)).Elem(),
	reflect.TypeOf((*fhir.RiskEvidenceSynthesis)(nil)).Elem(),
	reflect.TypeOf((*fhir.Schedule)(nil)).Elem(),
	reflect.TypeOf((*fhir.SearchParameter)(nil)).Elem(),
	reflect.TypeOf((*fhir.ServiceRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.Slot)(nil)).Elem(),
	reflect.TypeOf((*fhir.Specimen)(nil)).Elem(),
	reflect.TypeOf((*fhir.SpecimenDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.StructureDefinition)(nil)).Elem(),
	reflect.TypeOf((*fhir.StructureMap)(nil)).Elem(),
	reflect.TypeOf((*fhir.Subscription)(nil)).Elem(),
	reflect.TypeOf((*fhir.Substance)(nil)).Elem(),
	reflect.TypeOf((*fhir.SubstanceNucleicAcid)(nil)).Elem(),
	reflect.TypeOf((*fhir.SubstancePolymer)(nil)).Elem(),
	reflect.TypeOf((*fhir.SubstanceProtein)(nil)).Elem(),
	reflect.TypeOf((*fhir.SubstanceReferenceInformation)(nil)).Elem(),
	reflect.TypeOf((*fhir.SubstanceSourceMaterial)(nil)).Elem(),
	reflect.TypeOf((*fhir.SubstanceSpecification)(nil)).Elem(),
	reflect.TypeOf((*fhir.SupplyDelivery)(nil)).Elem(),
	reflect.TypeOf((*fhir.SupplyRequest)(nil)).Elem(),
	reflect.TypeOf((*fhir.Task)(nil)).Elem(),
	reflect.TypeOf((*fhir.TerminologyCapabilities)(nil)).Elem(),
	reflect.TypeOf((*fhir.TestReport)(nil)).Elem(),
	reflect.TypeOf((*fhir.TestScript)(nil)).Elem(),
	reflect.TypeOf((*fhir.ValueSet)(nil)).Elem(),
	reflect.TypeOf((*fhir.VerificationResult)(nil)).Elem(),
	reflect.TypeOf((*fhir.VisionPrescription)(nil)).Elem(),
}

var (
	registry        []Kind
	byType          = make(map[reflect.Type]Kind, len(modelTypes))
	byQualifiedName = make(map[string]Kind, len(modelTypes))
)

func init() {
	models := make(map[string]reflect.Type, len(modelTypes))
	for _, t := range modelTypes {
		models[t.Name()] = t
	}

	// The enum values are dense from zero, in code order
	for rt := fhir.ResourceType(0); rt.Code() != unknownCode; rt++ {
		if abstractResourceTypes[rt.Code()] {
			continue
		}
		t, ok := models[rt.Code()]
		if !ok {
			continue
		}
		k := Kind{Name: t.Name(), Type: t, ResourceType: rt}
		registry = append(registry, k)
		byType[t] = k
		byQualifiedName[qualifiedName(t)] = k
	}

	sort.Slice(registry, func(i, j int) bool { return registry[i].Name < registry[j].Name })
}

// Kinds returns every registered kind ordered by name.
func Kinds() []Kind {
	kinds := make([]Kind, len(registry))
	copy(kinds, registry)
	return kinds
}

// qualifiedName is the import path and name of t, e.g.
// "github.com/samply/golang-fhir-models/fhir-models/fhir.Patient".
func qualifiedName(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
