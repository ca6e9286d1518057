package flatcsv

// SampleJSON is a ready-made document exercising nested objects inside an
// enveloped array.
const SampleJSON = `{
  "pessoas": [
    {
      "nome": "João Silva",
      "idade": 32,
      "endereco": {
        "rua": "Rua das Flores",
        "numero": 120,
        "bairro": "Centro",
        "cidade": "Curitiba",
        "estado": "PR",
        "cep": "80010-000"
      },
      "contato": {
        "email": "joao.silva@example.com",
        "telefone": "(41) 99999-1234",
        "whatsapp": "(41) 98888-5678"
      }
    },
    {
      "nome": "Maria Oliveira",
      "idade": 27,
      "endereco": {
        "rua": "Avenida Brasil",
        "numero": 450,
        "bairro": "Jardim América",
        "cidade": "São Paulo",
        "estado": "SP",
        "cep": "01430-000"
      },
      "contato": {
        "email": "maria.oliveira@example.com",
        "telefone": "(11) 98877-4455",
        "whatsapp": "(11) 97766-3344"
      }
    },
    {
      "nome": "Carlos Pereira",
      "idade": 40,
      "endereco": {
        "rua": "Rua Rio Branco",
        "numero": 89,
        "bairro": "Boa Vista",
        "cidade": "Porto Alegre",
        "estado": "RS",
        "cep": "90520-001"
      },
      "contato": {
        "email": "carlos.pereira@example.com",
        "telefone": "(51) 99777-2233",
        "whatsapp": "(51) 99666-1122"
      }
    }
  ]
}`
