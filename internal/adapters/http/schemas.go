package web

import (
	"gymfront/internal/application/crud"
	"gymfront/internal/domain/horario"
	"gymfront/internal/domain/role"
	"gymfront/internal/domain/usuario"
)

func valuesOptions(values []string) []crud.Option {
	out := make([]crud.Option, len(values))
	for i, v := range values {
		out[i] = crud.Option{Value: v, Label: v}
	}
	return out
}

func roleOptions() []crud.Option {
	out := make([]crud.Option, len(role.All))
	for i, r := range role.All {
		out[i] = crud.Option{Value: r.String(), Label: r.String()}
	}
	return out
}

var usuarioSchema = crud.Schema{Fields: []crud.Field{
	{Name: "username", Label: "Usuario", Kind: crud.KindText, Required: true},
	{Name: "email", Label: "Correo", Kind: crud.KindEmail, Required: true},
	{Name: "password", Label: "Contraseña", Kind: crud.KindPassword, CreateOnly: true, Help: "Al editar, déjala en blanco para conservar la actual."},
	{Name: "nombre", Label: "Nombre", Kind: crud.KindText, Required: true},
	{Name: "apellido_paterno", Label: "Apellido paterno", Kind: crud.KindText},
	{Name: "apellido_materno", Label: "Apellido materno", Kind: crud.KindText},
	{Name: "sexo", Label: "Sexo", Kind: crud.KindSelect, Options: []crud.Option{
		{Value: usuario.SexoMasculino, Label: "Masculino"},
		{Value: usuario.SexoFemenino, Label: "Femenino"},
	}},
	{Name: "direccion", Label: "Dirección", Kind: crud.KindText},
	{Name: "fecha_nacimiento", Label: "Fecha de nacimiento", Kind: crud.KindDate},
	{Name: "rol", Label: "Rol", Kind: crud.KindSelect, Required: true, Options: roleOptions()},
}}

var clienteSchema = crud.Schema{Fields: []crud.Field{
	{Name: "usuario", Label: "Usuario", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "suscripcion_actual", Label: "Suscripción actual", Kind: crud.KindSelect, Numeric: true},
	{Name: "fecha_ini_mem", Label: "Inicio de membresía", Kind: crud.KindDate, Required: true},
	{Name: "fecha_fin_mem", Label: "Fin de membresía", Kind: crud.KindDate, Required: true},
}}

var disciplinaSchema = crud.Schema{Fields: []crud.Field{
	{Name: "nombre", Label: "Nombre", Kind: crud.KindText, Required: true},
	{Name: "grupo", Label: "Grupo", Kind: crud.KindText},
	{Name: "descripcion", Label: "Descripción", Kind: crud.KindTextarea, Help: "Admite Markdown."},
	{Name: "cupo", Label: "Cupo", Kind: crud.KindInteger, Required: true},
	{Name: "sala", Label: "Sala", Kind: crud.KindSelect, Numeric: true},
	{Name: "instructor", Label: "Instructor", Kind: crud.KindSelect, Numeric: true},
}}

var horarioSchema = crud.Schema{Fields: []crud.Field{
	{Name: "disciplina", Label: "Disciplina", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "sala", Label: "Sala", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "instructor", Label: "Instructor", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "dia", Label: "Día", Kind: crud.KindSelect, Required: true, Options: valuesOptions(horario.Dias)},
	{Name: "hora_ini", Label: "Hora de inicio", Kind: crud.KindTime, Required: true},
	{Name: "hora_fin", Label: "Hora de fin", Kind: crud.KindTime, Required: true},
	{Name: "cupo", Label: "Cupo", Kind: crud.KindInteger, Required: true},
}}

var suscripcionSchema = crud.Schema{Fields: []crud.Field{
	{Name: "nombre", Label: "Nombre", Kind: crud.KindText, Required: true},
	{Name: "tipo", Label: "Tipo", Kind: crud.KindText},
	{Name: "descripcion", Label: "Descripción", Kind: crud.KindTextarea, Help: "Admite Markdown."},
	{Name: "precio", Label: "Precio", Kind: crud.KindNumber, Required: true},
}}

var promocionSchema = crud.Schema{Fields: []crud.Field{
	{Name: "nombre", Label: "Nombre", Kind: crud.KindText, Required: true},
	{Name: "tipo", Label: "Tipo", Kind: crud.KindText, Required: true},
	{Name: "estado", Label: "Activa", Kind: crud.KindCheckbox},
	{Name: "descripcion", Label: "Descripción", Kind: crud.KindTextarea, Required: true},
	{Name: "descuento", Label: "Descuento (%)", Kind: crud.KindNumber, Required: true},
	{Name: "fecha_ini", Label: "Fecha de inicio", Kind: crud.KindDate, Required: true},
	{Name: "fecha_fin", Label: "Fecha de fin", Kind: crud.KindDate, Required: true},
}}

var reservaSchema = crud.Schema{Fields: []crud.Field{
	{Name: "cliente", Label: "Cliente", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "horario", Label: "Horario", Kind: crud.KindSelect, Numeric: true, Required: true, Help: "Solo se ofrecen horarios con cupo disponible."},
}}

var antecedenteSchema = crud.Schema{Fields: []crud.Field{
	{Name: "cliente", Label: "Cliente", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "nutricionista", Label: "Nutricionista", Kind: crud.KindSelect, Numeric: true, Required: true},
	{Name: "fecha", Label: "Fecha", Kind: crud.KindDate, Required: true},
	{Name: "peso", Label: "Peso (kg)", Kind: crud.KindNumber},
	{Name: "altura", Label: "Altura (m)", Kind: crud.KindNumber},
	{Name: "imc", Label: "IMC", Kind: crud.KindNumber, ReadOnly: true, Help: "Se calcula con el peso y la altura."},
	{Name: "gc", Label: "Grasa corporal (%)", Kind: crud.KindNumber},
	{Name: "cc", Label: "Circunferencia de cintura (cm)", Kind: crud.KindNumber},
	{Name: "diagnostico", Label: "Diagnóstico", Kind: crud.KindTextarea, Help: "Admite Markdown."},
	{Name: "recomendaciones", Label: "Recomendaciones", Kind: crud.KindTextarea, Help: "Admite Markdown."},
	{Name: "fecha_prox_consulta", Label: "Próxima consulta", Kind: crud.KindDate},
}}
